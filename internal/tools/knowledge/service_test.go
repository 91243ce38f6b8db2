package knowledge

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/snow"
)

// ==========================
// Mock Implementations
// ==========================

type mockTableAPI struct {
	getRecordsFunc   func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error)
	getRecordFunc    func(ctx context.Context, table, sysID string) (snow.Record, error)
	createRecordFunc func(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error)
	updateRecordFunc func(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error)

	lastQuery  snow.RecordQuery
	lastFields map[string]interface{}
}

func (m *mockTableAPI) GetRecords(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
	m.lastQuery = q
	if m.getRecordsFunc != nil {
		return m.getRecordsFunc(ctx, table, q)
	}
	return nil, nil
}

func (m *mockTableAPI) GetRecord(ctx context.Context, table, sysID string) (snow.Record, error) {
	if m.getRecordFunc != nil {
		return m.getRecordFunc(ctx, table, sysID)
	}
	return snow.Record{"sys_id": sysID}, nil
}

func (m *mockTableAPI) CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error) {
	m.lastFields = fields
	if m.createRecordFunc != nil {
		return m.createRecordFunc(ctx, table, fields)
	}
	return snow.Record{"sys_id": "created"}, nil
}

func (m *mockTableAPI) UpdateRecord(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error) {
	m.lastFields = fields
	if m.updateRecordFunc != nil {
		return m.updateRecordFunc(ctx, table, sysID, fields)
	}
	return snow.Record{"sys_id": sysID}, nil
}

func newService(t *testing.T, client TableAPI) *Service {
	t.Helper()
	return NewService(client, logger.NewTestLogger(t))
}

// ==========================
// Tests
// ==========================

func TestCreateKnowledgeBase_DefaultWorkflows(t *testing.T) {
	client := &mockTableAPI{
		createRecordFunc: func(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error) {
			assert.Equal(t, "kb_knowledge_base", table)
			return snow.Record{"sys_id": "kb1", "title": "IT Knowledge"}, nil
		},
	}

	resp := newService(t, client).CreateKnowledgeBase(context.Background(), CreateKnowledgeBaseParams{
		Title: "IT Knowledge",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, "kb1", resp.KBID)
	assert.Equal(t, "IT Knowledge", resp.KBName)
	assert.Equal(t, "Knowledge - Instant Publish", client.lastFields["workflow_publish"])
	assert.Equal(t, "Knowledge - Instant Retire", client.lastFields["workflow_retire"])
}

func TestCreateKnowledgeBase_APIFailure(t *testing.T) {
	client := &mockTableAPI{
		createRecordFunc: func(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error) {
			return nil, fmt.Errorf("status 403")
		},
	}

	resp := newService(t, client).CreateKnowledgeBase(context.Background(), CreateKnowledgeBaseParams{Title: "x"})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Failed to create knowledge base")
}

func TestListKnowledgeBases_FlattensRecords(t *testing.T) {
	active := true
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			assert.Equal(t, "kb_knowledge_base", table)
			assert.Equal(t, "active=true^titleLIKEonboarding^ORdescriptionLIKEonboarding", q.Query)
			return []snow.Record{{
				"sys_id":      "kb1",
				"title":       "HR Knowledge",
				"description": "Onboarding guides",
				"owner":       map[string]interface{}{"value": "user1", "display_value": "Jane Doe"},
				"active":      "true",
			}}, nil
		},
	}

	resp := newService(t, client).ListKnowledgeBases(context.Background(), ListKnowledgeBasesParams{
		Active: &active,
		Query:  "onboarding",
	})

	require.True(t, resp.Success)
	require.Len(t, resp.KnowledgeBases, 1)
	kb := resp.KnowledgeBases[0]
	assert.Equal(t, "kb1", kb.ID)
	assert.Equal(t, "HR Knowledge", kb.Title)
	assert.Equal(t, "Jane Doe", kb.Owner)
	assert.True(t, kb.Active)
}

func TestListKnowledgeBases_DefaultLimit(t *testing.T) {
	client := &mockTableAPI{}

	resp := newService(t, client).ListKnowledgeBases(context.Background(), ListKnowledgeBasesParams{})

	assert.True(t, resp.Success)
	assert.Equal(t, 10, client.lastQuery.Limit)
	assert.Empty(t, client.lastQuery.Query)
}

func TestCreateCategory(t *testing.T) {
	client := &mockTableAPI{
		createRecordFunc: func(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error) {
			assert.Equal(t, "kb_category", table)
			assert.Equal(t, "Hardware", fields["label"])
			assert.Equal(t, "kb1", fields["kb_knowledge_base"])
			assert.Equal(t, "true", fields["active"])
			return snow.Record{"sys_id": "cat1", "label": "Hardware"}, nil
		},
	}

	resp := newService(t, client).CreateCategory(context.Background(), CreateCategoryParams{
		Title:         "Hardware",
		KnowledgeBase: "kb1",
		Active:        true,
	})

	assert.True(t, resp.Success)
	assert.Equal(t, "cat1", resp.CategoryID)
	assert.Equal(t, "Hardware", resp.CategoryName)
}

func TestListCategories_ScopedToKnowledgeBase(t *testing.T) {
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			assert.Equal(t, "kb_category", table)
			assert.Equal(t, "kb_knowledge_base=kb1", q.Query)
			return []snow.Record{{"sys_id": "cat1"}}, nil
		},
	}

	resp := newService(t, client).ListCategories(context.Background(), ListCategoriesParams{
		KnowledgeBase: "kb1",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
}

func TestCreateArticle_Defaults(t *testing.T) {
	client := &mockTableAPI{
		createRecordFunc: func(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error) {
			assert.Equal(t, "kb_knowledge", table)
			assert.Equal(t, "html", fields["article_type"])
			assert.Equal(t, "VPN Setup", fields["short_description"])
			return snow.Record{
				"sys_id":            "art1",
				"short_description": "VPN Setup",
				"workflow_state":    "draft",
			}, nil
		},
	}

	resp := newService(t, client).CreateArticle(context.Background(), CreateArticleParams{
		Title:         "VPN Setup",
		Text:          "<p>Steps</p>",
		KnowledgeBase: "kb1",
		Category:      "cat1",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, "art1", resp.ArticleID)
	assert.Equal(t, "VPN Setup", resp.ArticleTitle)
	assert.Equal(t, "draft", resp.WorkflowState)
}

func TestUpdateArticle_OnlyProvidedFields(t *testing.T) {
	client := &mockTableAPI{
		updateRecordFunc: func(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error) {
			assert.Equal(t, "kb_knowledge", table)
			assert.Equal(t, "art1", sysID)
			assert.Equal(t, map[string]interface{}{"text": "<p>Updated</p>"}, fields)
			return snow.Record{"short_description": "VPN Setup", "workflow_state": "draft"}, nil
		},
	}

	resp := newService(t, client).UpdateArticle(context.Background(), UpdateArticleParams{
		ArticleID: "art1",
		Text:      "<p>Updated</p>",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, "art1", resp.ArticleID)
}

func TestPublishArticle_DefaultState(t *testing.T) {
	client := &mockTableAPI{
		updateRecordFunc: func(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error) {
			assert.Equal(t, "published", fields["workflow_state"])
			return snow.Record{"short_description": "VPN Setup", "workflow_state": "published"}, nil
		},
	}

	resp := newService(t, client).PublishArticle(context.Background(), PublishArticleParams{
		ArticleID: "art1",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, "published", resp.WorkflowState)
}

func TestListArticles_DottedReferenceFilters(t *testing.T) {
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			assert.Equal(t, "kb_knowledge", table)
			assert.Equal(t, "kb_knowledge_base.sys_id=kb1^kb_category.sys_id=cat1^workflow_state=published", q.Query)
			assert.Equal(t, "all", q.DisplayValue)
			return []snow.Record{{
				"sys_id":            "art1",
				"short_description": "VPN Setup",
				"kb_knowledge_base": map[string]interface{}{"value": "kb1", "display_value": "IT Knowledge"},
				"workflow_state":    map[string]interface{}{"value": "published", "display_value": "Published"},
			}}, nil
		},
	}

	resp := newService(t, client).ListArticles(context.Background(), ListArticlesParams{
		KnowledgeBase: "kb1",
		Category:      "cat1",
		WorkflowState: "published",
	})

	require.True(t, resp.Success)
	require.Len(t, resp.Articles, 1)
	assert.Equal(t, "IT Knowledge", resp.Articles[0].KnowledgeBase)
	assert.Equal(t, "Published", resp.Articles[0].WorkflowState)
}

func TestGetArticle(t *testing.T) {
	client := &mockTableAPI{
		getRecordFunc: func(ctx context.Context, table, sysID string) (snow.Record, error) {
			assert.Equal(t, "kb_knowledge", table)
			assert.Equal(t, "art1", sysID)
			return snow.Record{"sys_id": "art1", "short_description": "VPN Setup"}, nil
		},
	}

	resp := newService(t, client).GetArticle(context.Background(), GetArticleParams{ArticleID: "art1"})

	require.True(t, resp.Success)
	assert.Equal(t, "art1", resp.Article.SysID())
}

func TestGetArticle_NotFound(t *testing.T) {
	client := &mockTableAPI{
		getRecordFunc: func(ctx context.Context, table, sysID string) (snow.Record, error) {
			return nil, &snow.APIError{StatusCode: 404, Body: "not found"}
		},
	}

	resp := newService(t, client).GetArticle(context.Background(), GetArticleParams{ArticleID: "ghost"})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Failed to get article")
}

func TestSearchArticles_ORGroupOverTitleAndText(t *testing.T) {
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			assert.Equal(t, "short_descriptionLIKEvpn^ORtextLIKEvpn^kb_knowledge_base=kb1", q.Query)
			return []snow.Record{{"sys_id": "art1"}, {"sys_id": "art2"}}, nil
		},
	}

	resp := newService(t, client).SearchArticles(context.Background(), SearchArticlesParams{
		SearchTerm:    "vpn",
		KnowledgeBase: "kb1",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Contains(t, resp.Message, "vpn")
}

func TestSearchArticles_RejectsSeparatorInTerm(t *testing.T) {
	called := false
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			called = true
			return nil, nil
		},
	}

	resp := newService(t, client).SearchArticles(context.Background(), SearchArticlesParams{
		SearchTerm: "vpn^workflow_state=retired",
	})

	assert.False(t, resp.Success)
	assert.False(t, called)
}

func TestAddComment(t *testing.T) {
	client := &mockTableAPI{
		updateRecordFunc: func(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error) {
			assert.Equal(t, "kb_knowledge", table)
			assert.Equal(t, "art1", sysID)
			assert.Equal(t, map[string]interface{}{"comments": "Looks good"}, fields)
			return snow.Record{}, nil
		},
	}

	resp := newService(t, client).AddComment(context.Background(), AddCommentParams{
		ArticleID: "art1",
		Comment:   "Looks good",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, "comment", resp.CommentType)
	assert.Contains(t, resp.Message, "art1")
}

func TestAddComment_WorkNote(t *testing.T) {
	client := &mockTableAPI{
		updateRecordFunc: func(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error) {
			assert.Equal(t, map[string]interface{}{"work_notes": "Internal note"}, fields)
			return snow.Record{}, nil
		},
	}

	resp := newService(t, client).AddComment(context.Background(), AddCommentParams{
		ArticleID:  "art1",
		Comment:    "Internal note",
		IsWorkNote: true,
	})

	assert.True(t, resp.Success)
	assert.Equal(t, "work_note", resp.CommentType)
}

func TestGetComments(t *testing.T) {
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			assert.Equal(t, "sys_journal_field", table)
			assert.Equal(t, "element_id=art1^element=comments^ORwork_notes=art1", q.Query)
			return []snow.Record{{
				"sys_id":         "jrn1",
				"element":        "comments",
				"value":          "Looks good",
				"sys_created_on": "2026-08-01 10:00:00",
				"sys_created_by": "jdoe",
			}}, nil
		},
	}

	resp := newService(t, client).GetComments(context.Background(), GetCommentsParams{ArticleID: "art1"})

	require.True(t, resp.Success)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "Looks good", resp.Comments[0].Text)
	assert.Equal(t, "comments", resp.Comments[0].Type)
	assert.Equal(t, "jdoe", resp.Comments[0].CreatedBy)
}

func TestGetComments_RejectsSeparatorInArticleID(t *testing.T) {
	called := false
	client := &mockTableAPI{
		getRecordsFunc: func(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
			called = true
			return nil, nil
		},
	}

	resp := newService(t, client).GetComments(context.Background(), GetCommentsParams{
		ArticleID: "art1^sys_created_by=admin",
	})

	assert.False(t, resp.Success)
	assert.False(t, called)
}
