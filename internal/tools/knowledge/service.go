// Package knowledge manages knowledge bases, categories, articles and their
// journal comments.
package knowledge

import (
	"context"
	"fmt"

	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/snow/query"
)

const (
	tableKnowledgeBase = "kb_knowledge_base"
	tableCategory      = "kb_category"
	tableArticle       = "kb_knowledge"
	tableJournal       = "sys_journal_field"
)

type TableAPI interface {
	GetRecords(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error)
	GetRecord(ctx context.Context, table, sysID string) (snow.Record, error)
	CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (snow.Record, error)
	UpdateRecord(ctx context.Context, table, sysID string, fields map[string]interface{}) (snow.Record, error)
}

type Service struct {
	client TableAPI
	logger logger.Logger
}

func NewService(client TableAPI, log logger.Logger) *Service {
	return &Service{client: client, logger: log}
}

// CreateKnowledgeBase inserts a kb_knowledge_base record. Publish and retire
// workflows default to the instant variants.
func (s *Service) CreateKnowledgeBase(ctx context.Context, params CreateKnowledgeBaseParams) *KnowledgeBaseResponse {
	publishWorkflow := params.PublishWorkflow
	if publishWorkflow == "" {
		publishWorkflow = "Knowledge - Instant Publish"
	}
	retireWorkflow := params.RetireWorkflow
	if retireWorkflow == "" {
		retireWorkflow = "Knowledge - Instant Retire"
	}

	data := map[string]interface{}{
		"title":            params.Title,
		"workflow_publish": publishWorkflow,
		"workflow_retire":  retireWorkflow,
	}
	if params.Description != "" {
		data["description"] = params.Description
	}
	if params.Owner != "" {
		data["owner"] = params.Owner
	}
	if params.Managers != "" {
		data["kb_managers"] = params.Managers
	}

	record, err := s.client.CreateRecord(ctx, tableKnowledgeBase, data)
	if err != nil {
		s.logger.Error("failed to create knowledge base", map[string]interface{}{"error": err.Error()})
		return &KnowledgeBaseResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create knowledge base: %v", err),
		}
	}

	return &KnowledgeBaseResponse{
		Success: true,
		Message: "Knowledge base created successfully",
		KBID:    record.SysID(),
		KBName:  record.GetString("title"),
	}
}

// ListKnowledgeBases returns flattened knowledge base summaries.
func (s *Service) ListKnowledgeBases(ctx context.Context, params ListKnowledgeBasesParams) *ListKnowledgeBasesResponse {
	b := query.NewBuilder()
	if params.Active != nil {
		b.Equals("active", fmt.Sprintf("%t", *params.Active))
	}
	b.OrGroup(params.Query, "title", "description")

	q, err := b.Build()
	if err != nil {
		return &ListKnowledgeBasesResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	records, err := s.client.GetRecords(ctx, tableKnowledgeBase, snow.RecordQuery{
		Query:        q,
		Limit:        limit,
		Offset:       params.Offset,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to list knowledge bases", map[string]interface{}{"error": err.Error()})
		return &ListKnowledgeBasesResponse{Success: false, Message: fmt.Sprintf("Failed to list knowledge bases: %v", err)}
	}

	bases := make([]KnowledgeBaseSummary, 0, len(records))
	for _, record := range records {
		bases = append(bases, KnowledgeBaseSummary{
			ID:          record.SysID(),
			Title:       record.GetString("title"),
			Description: record.GetString("description"),
			Owner:       record.GetDisplayValue("owner"),
			Managers:    record.GetDisplayValue("kb_managers"),
			Active:      record.GetString("active") == "true",
			Created:     record.GetString("sys_created_on"),
			Updated:     record.GetString("sys_updated_on"),
		})
	}

	return &ListKnowledgeBasesResponse{
		Success:        true,
		Message:        fmt.Sprintf("Found %d knowledge bases", len(bases)),
		KnowledgeBases: bases,
		Count:          len(bases),
	}
}

// CreateCategory inserts a kb_category record.
func (s *Service) CreateCategory(ctx context.Context, params CreateCategoryParams) *CategoryResponse {
	data := map[string]interface{}{
		"label":             params.Title,
		"kb_knowledge_base": params.KnowledgeBase,
		"active":            fmt.Sprintf("%t", params.Active),
	}
	if params.Description != "" {
		data["description"] = params.Description
	}
	if params.ParentCategory != "" {
		data["parent"] = params.ParentCategory
	}
	if params.ParentTable != "" {
		data["parent_table"] = params.ParentTable
	}

	record, err := s.client.CreateRecord(ctx, tableCategory, data)
	if err != nil {
		s.logger.Error("failed to create category", map[string]interface{}{"error": err.Error()})
		return &CategoryResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create category: %v", err),
		}
	}

	return &CategoryResponse{
		Success:      true,
		Message:      "Category created successfully",
		CategoryID:   record.SysID(),
		CategoryName: record.GetString("label"),
	}
}

// ListCategories returns categories, optionally scoped to one knowledge base
// or parent category.
func (s *Service) ListCategories(ctx context.Context, params ListCategoriesParams) *ListCategoriesResponse {
	b := query.NewBuilder()
	b.Equals("kb_knowledge_base", params.KnowledgeBase)
	b.Equals("parent", params.ParentCategory)
	if params.Active != nil {
		b.Equals("active", fmt.Sprintf("%t", *params.Active))
	}
	b.OrGroup(params.Query, "label", "description")

	q, err := b.Build()
	if err != nil {
		return &ListCategoriesResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	records, err := s.client.GetRecords(ctx, tableCategory, snow.RecordQuery{
		Query:        q,
		Limit:        limit,
		Offset:       params.Offset,
		DisplayValue: "true",
	})
	if err != nil {
		s.logger.Error("failed to list categories", map[string]interface{}{"error": err.Error()})
		return &ListCategoriesResponse{Success: false, Message: fmt.Sprintf("Failed to list categories: %v", err)}
	}

	return &ListCategoriesResponse{
		Success:    true,
		Message:    fmt.Sprintf("Found %d categories", len(records)),
		Categories: records,
		Count:      len(records),
	}
}

// CreateArticle inserts a kb_knowledge record. Title wins over
// ShortDescription when both are set.
func (s *Service) CreateArticle(ctx context.Context, params CreateArticleParams) *ArticleResponse {
	articleType := params.ArticleType
	if articleType == "" {
		articleType = "html"
	}

	data := map[string]interface{}{
		"short_description": params.ShortDescription,
		"text":              params.Text,
		"kb_knowledge_base": params.KnowledgeBase,
		"kb_category":       params.Category,
		"article_type":      articleType,
	}
	if params.Title != "" {
		data["short_description"] = params.Title
	}
	if params.Keywords != "" {
		data["keywords"] = params.Keywords
	}

	record, err := s.client.CreateRecord(ctx, tableArticle, data)
	if err != nil {
		s.logger.Error("failed to create article", map[string]interface{}{"error": err.Error()})
		return &ArticleResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to create article: %v", err),
		}
	}

	return &ArticleResponse{
		Success:       true,
		Message:       "Article created successfully",
		ArticleID:     record.SysID(),
		ArticleTitle:  record.GetString("short_description"),
		WorkflowState: record.GetString("workflow_state"),
	}
}

// UpdateArticle patches a kb_knowledge record by sys_id.
func (s *Service) UpdateArticle(ctx context.Context, params UpdateArticleParams) *ArticleResponse {
	data := map[string]interface{}{}
	if params.Title != "" {
		data["short_description"] = params.Title
	}
	if params.Text != "" {
		data["text"] = params.Text
	}
	if params.ShortDescription != "" {
		data["short_description"] = params.ShortDescription
	}
	if params.Category != "" {
		data["kb_category"] = params.Category
	}
	if params.Keywords != "" {
		data["keywords"] = params.Keywords
	}

	record, err := s.client.UpdateRecord(ctx, tableArticle, params.ArticleID, data)
	if err != nil {
		s.logger.Error("failed to update article", map[string]interface{}{
			"article_id": params.ArticleID,
			"error":      err.Error(),
		})
		return &ArticleResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to update article: %v", err),
		}
	}

	return &ArticleResponse{
		Success:       true,
		Message:       "Article updated successfully",
		ArticleID:     params.ArticleID,
		ArticleTitle:  record.GetString("short_description"),
		WorkflowState: record.GetString("workflow_state"),
	}
}

// PublishArticle moves an article to the published workflow state.
func (s *Service) PublishArticle(ctx context.Context, params PublishArticleParams) *ArticleResponse {
	workflowState := params.WorkflowState
	if workflowState == "" {
		workflowState = "published"
	}

	data := map[string]interface{}{
		"workflow_state": workflowState,
	}
	if params.WorkflowVersion != "" {
		data["workflow_version"] = params.WorkflowVersion
	}

	record, err := s.client.UpdateRecord(ctx, tableArticle, params.ArticleID, data)
	if err != nil {
		s.logger.Error("failed to publish article", map[string]interface{}{
			"article_id": params.ArticleID,
			"error":      err.Error(),
		})
		return &ArticleResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to publish article: %v", err),
		}
	}

	return &ArticleResponse{
		Success:       true,
		Message:       "Article published successfully",
		ArticleID:     params.ArticleID,
		ArticleTitle:  record.GetString("short_description"),
		WorkflowState: record.GetString("workflow_state"),
	}
}

// ListArticles returns flattened article summaries.
func (s *Service) ListArticles(ctx context.Context, params ListArticlesParams) *ListArticlesResponse {
	b := query.NewBuilder()
	b.Equals("kb_knowledge_base.sys_id", params.KnowledgeBase)
	b.Equals("kb_category.sys_id", params.Category)
	b.Equals("workflow_state", params.WorkflowState)
	b.OrGroup(params.Query, "short_description", "text")

	q, err := b.Build()
	if err != nil {
		return &ListArticlesResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	records, err := s.client.GetRecords(ctx, tableArticle, snow.RecordQuery{
		Query:        q,
		Limit:        limit,
		Offset:       params.Offset,
		DisplayValue: "all",
	})
	if err != nil {
		s.logger.Error("failed to list articles", map[string]interface{}{"error": err.Error()})
		return &ListArticlesResponse{Success: false, Message: fmt.Sprintf("Failed to list articles: %v", err)}
	}

	articles := make([]ArticleSummary, 0, len(records))
	for _, record := range records {
		articles = append(articles, ArticleSummary{
			ID:            record.SysID(),
			Title:         record.GetString("short_description"),
			KnowledgeBase: record.GetDisplayValue("kb_knowledge_base"),
			Category:      record.GetDisplayValue("kb_category"),
			WorkflowState: record.GetDisplayValue("workflow_state"),
			Created:       record.GetString("sys_created_on"),
			Updated:       record.GetString("sys_updated_on"),
		})
	}

	return &ListArticlesResponse{
		Success:  true,
		Message:  fmt.Sprintf("Found %d articles", len(articles)),
		Articles: articles,
		Count:    len(articles),
	}
}

// GetArticle fetches one article by sys_id.
func (s *Service) GetArticle(ctx context.Context, params GetArticleParams) *GetArticleResponse {
	record, err := s.client.GetRecord(ctx, tableArticle, params.ArticleID)
	if err != nil {
		s.logger.Error("failed to get article", map[string]interface{}{
			"article_id": params.ArticleID,
			"error":      err.Error(),
		})
		return &GetArticleResponse{Success: false, Message: fmt.Sprintf("Failed to get article: %v", err)}
	}

	return &GetArticleResponse{Success: true, Message: "Article found", Article: record}
}

// SearchArticles matches a term against short description and body text.
func (s *Service) SearchArticles(ctx context.Context, params SearchArticlesParams) *SearchArticlesResponse {
	b := query.NewBuilder()
	b.OrGroup(params.SearchTerm, "short_description", "text")
	b.Equals("kb_knowledge_base", params.KnowledgeBase)
	b.Equals("workflow_state", params.WorkflowState)

	q, err := b.Build()
	if err != nil {
		return &SearchArticlesResponse{Success: false, Message: err.Error()}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	records, err := s.client.GetRecords(ctx, tableArticle, snow.RecordQuery{
		Query:        q,
		Limit:        limit,
		Offset:       params.Offset,
		Fields:       []string{"sys_id", "number", "short_description", "text", "kb_knowledge_base", "workflow_state", "sys_created_on"},
		DisplayValue: "all",
	})
	if err != nil {
		s.logger.Error("failed to search articles", map[string]interface{}{"error": err.Error()})
		return &SearchArticlesResponse{Success: false, Message: fmt.Sprintf("Failed to search knowledge base: %v", err)}
	}

	return &SearchArticlesResponse{
		Success:  true,
		Message:  fmt.Sprintf("Found %d articles matching '%s'", len(records), params.SearchTerm),
		Articles: records,
		Count:    len(records),
	}
}

// AddComment appends a comment or work note to an article's journal.
func (s *Service) AddComment(ctx context.Context, params AddCommentParams) *CommentResponse {
	field := "comments"
	commentType := "comment"
	if params.IsWorkNote {
		field = "work_notes"
		commentType = "work_note"
	}

	_, err := s.client.UpdateRecord(ctx, tableArticle, params.ArticleID, map[string]interface{}{
		field: params.Comment,
	})
	if err != nil {
		s.logger.Error("failed to add comment", map[string]interface{}{
			"article_id": params.ArticleID,
			"error":      err.Error(),
		})
		return &CommentResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to add comment: %v", err),
			ArticleID: params.ArticleID,
		}
	}

	return &CommentResponse{
		Success:     true,
		Message:     fmt.Sprintf("Comment added to article %s", params.ArticleID),
		ArticleID:   params.ArticleID,
		CommentType: commentType,
	}
}

// GetComments reads an article's journal entries. The article id goes into
// a raw journal clause, so reserved separators are rejected up front.
func (s *Service) GetComments(ctx context.Context, params GetCommentsParams) *CommentsListResponse {
	if err := query.ValidateTerm(params.ArticleID); err != nil {
		return &CommentsListResponse{
			Success:   false,
			Message:   err.Error(),
			ArticleID: params.ArticleID,
		}
	}

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	records, err := s.client.GetRecords(ctx, tableJournal, snow.RecordQuery{
		Query:        fmt.Sprintf("element_id=%s^element=comments^ORwork_notes=%s", params.ArticleID, params.ArticleID),
		Limit:        limit,
		Offset:       params.Offset,
		Fields:       []string{"sys_id", "element", "element_id", "value", "sys_created_on", "sys_created_by"},
		DisplayValue: "all",
	})
	if err != nil {
		s.logger.Error("failed to get comments", map[string]interface{}{
			"article_id": params.ArticleID,
			"error":      err.Error(),
		})
		return &CommentsListResponse{
			Success:   false,
			Message:   fmt.Sprintf("Failed to get comments: %v", err),
			ArticleID: params.ArticleID,
		}
	}

	comments := make([]Comment, 0, len(records))
	for _, record := range records {
		comments = append(comments, Comment{
			ID:        record.SysID(),
			Text:      record.GetString("value"),
			Type:      record.GetString("element"),
			CreatedOn: record.GetString("sys_created_on"),
			CreatedBy: record.GetDisplayValue("sys_created_by"),
		})
	}

	return &CommentsListResponse{
		Success:   true,
		Message:   fmt.Sprintf("Found %d comments", len(comments)),
		ArticleID: params.ArticleID,
		Comments:  comments,
		Count:     len(comments),
	}
}
