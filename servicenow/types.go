package servicenow

// Article is the subset of kb_knowledge fields the connector works with.
type Article struct {
	SysID            string `json:"sys_id"`
	Number           string `json:"number"`
	ShortDescription string `json:"short_description"`
	Text             string `json:"text"`
	Category         string `json:"category"`
	UpdatedOn        string `json:"sys_updated_on"`
	WorkflowState    string `json:"workflow_state"`
}

// Attachment describes a sys_attachment record. SizeBytes stays a string
// because the Table API returns every field as text.
type Attachment struct {
	SysID       string `json:"sys_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   string `json:"size_bytes"`
}

// ArticleDraft is the create payload for a kb_knowledge record.
type ArticleDraft struct {
	ShortDescription string `json:"short_description"`
	Text             string `json:"text"`
	KBCategory       string `json:"kb_category"`
	WorkflowState    string `json:"workflow_state"`
}

type articleListResult struct {
	Result []Article `json:"result"`
}

type attachmentListResult struct {
	Result []Attachment `json:"result"`
}
