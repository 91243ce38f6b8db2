package knowledge

import "servicenow-toolkit/internal/snow"

type CreateKnowledgeBaseParams struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Owner           string `json:"owner,omitempty"`
	Managers        string `json:"managers,omitempty"`
	PublishWorkflow string `json:"publish_workflow,omitempty"`
	RetireWorkflow  string `json:"retire_workflow,omitempty"`
}

type ListKnowledgeBasesParams struct {
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Active *bool  `json:"active,omitempty"`
	Query  string `json:"query,omitempty"`
}

type CreateCategoryParams struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	KnowledgeBase  string `json:"knowledge_base"`
	ParentCategory string `json:"parent_category,omitempty"`
	ParentTable    string `json:"parent_table,omitempty"`
	Active         bool   `json:"active"`
}

type ListCategoriesParams struct {
	KnowledgeBase  string `json:"knowledge_base,omitempty"`
	ParentCategory string `json:"parent_category,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	Active         *bool  `json:"active,omitempty"`
	Query          string `json:"query,omitempty"`
}

type CreateArticleParams struct {
	Title            string `json:"title"`
	Text             string `json:"text"`
	ShortDescription string `json:"short_description"`
	KnowledgeBase    string `json:"knowledge_base"`
	Category         string `json:"category"`
	Keywords         string `json:"keywords,omitempty"`
	ArticleType      string `json:"article_type,omitempty"`
}

type UpdateArticleParams struct {
	ArticleID        string `json:"article_id"`
	Title            string `json:"title,omitempty"`
	Text             string `json:"text,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`
	Category         string `json:"category,omitempty"`
	Keywords         string `json:"keywords,omitempty"`
}

type PublishArticleParams struct {
	ArticleID       string `json:"article_id"`
	WorkflowState   string `json:"workflow_state,omitempty"`
	WorkflowVersion string `json:"workflow_version,omitempty"`
}

type ListArticlesParams struct {
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
	KnowledgeBase string `json:"knowledge_base,omitempty"`
	Category      string `json:"category,omitempty"`
	Query         string `json:"query,omitempty"`
	WorkflowState string `json:"workflow_state,omitempty"`
}

type GetArticleParams struct {
	ArticleID string `json:"article_id"`
}

type SearchArticlesParams struct {
	SearchTerm    string `json:"search_term"`
	KnowledgeBase string `json:"knowledge_base,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
	WorkflowState string `json:"workflow_state,omitempty"`
}

type AddCommentParams struct {
	ArticleID  string `json:"article_id"`
	Comment    string `json:"comment"`
	IsWorkNote bool   `json:"is_work_note,omitempty"`
}

type GetCommentsParams struct {
	ArticleID string `json:"article_id"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// ==========================
// Responses
// ==========================

type KnowledgeBaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	KBID    string `json:"kb_id,omitempty"`
	KBName  string `json:"kb_name,omitempty"`
}

type CategoryResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

type ArticleResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ArticleID     string `json:"article_id,omitempty"`
	ArticleTitle  string `json:"article_title,omitempty"`
	WorkflowState string `json:"workflow_state,omitempty"`
}

// KnowledgeBaseSummary is the flattened shape returned by list operations.
type KnowledgeBaseSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Managers    string `json:"managers"`
	Active      bool   `json:"active"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
}

type ListKnowledgeBasesResponse struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message"`
	KnowledgeBases []KnowledgeBaseSummary `json:"knowledge_bases"`
	Count          int                    `json:"count"`
}

// ArticleSummary is the flattened shape returned by list operations.
type ArticleSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	KnowledgeBase string `json:"knowledge_base"`
	Category      string `json:"category"`
	WorkflowState string `json:"workflow_state"`
	Created       string `json:"created"`
	Updated       string `json:"updated"`
}

type ListArticlesResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Articles []ArticleSummary `json:"articles"`
	Count    int              `json:"count"`
}

type GetArticleResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Article snow.Record `json:"article,omitempty"`
}

type SearchArticlesResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Articles []snow.Record `json:"articles"`
	Count    int           `json:"count"`
}

type ListCategoriesResponse struct {
	Success    bool          `json:"success"`
	Message    string        `json:"message"`
	Categories []snow.Record `json:"categories"`
	Count      int           `json:"count"`
}

// Comment is one journal entry on an article.
type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      string `json:"type"` // "comments" or "work_notes"
	CreatedOn string `json:"created_on"`
	CreatedBy string `json:"created_by"`
}

type CommentResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ArticleID   string `json:"article_id"`
	CommentType string `json:"comment_type,omitempty"`
}

type CommentsListResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ArticleID string    `json:"article_id"`
	Comments  []Comment `json:"comments,omitempty"`
	Count     int       `json:"count"`
}
