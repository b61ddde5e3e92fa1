package uploader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajeevsingh-dev/ServiceNow-Connector/backends"
	"github.com/rajeevsingh-dev/ServiceNow-Connector/servicenow"
)

type stubClient struct {
	created      []servicenow.ArticleDraft
	uploaded     []string
	published    []string
	createErr    error
	uploadErr    error
	publishErr   error
	nextArticle  int
	nextAttached int
}

func (s *stubClient) CreateArticle(_ context.Context, draft servicenow.ArticleDraft) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = append(s.created, draft)
	s.nextArticle++
	return "article-" + string(rune('0'+s.nextArticle)), nil
}

func (s *stubClient) UploadAttachment(_ context.Context, tableName, tableSysID, filePath string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	if tableName != KnowledgeTable {
		return "", errors.New("unexpected table " + tableName)
	}
	s.uploaded = append(s.uploaded, filepath.Base(filePath))
	s.nextAttached++
	return "attachment-" + string(rune('0'+s.nextAttached)), nil
}

func (s *stubClient) PublishArticle(_ context.Context, sysID string) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.published = append(s.published, sysID)
	return nil
}

func (s *stubClient) ArticleURL(sysID string) string {
	return "https://test.service-now.com/kb_view.do?sysparm_article=" + sysID
}

func writePolicyDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4 stub"), 0o644))
	}
	return dir
}

func TestRunPublishesEveryPDF(t *testing.T) {
	dir := writePolicyDir(t, "UK_Standby_Callout.pdf", "Expenses.pdf", "notes.txt")
	client := &stubClient{}
	u := New(client, &backends.InMemoryBackend{}, dir, "cat-123")
	u.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	report, err := u.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 2, report.Uploaded)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, client.published, 2)

	// Non-PDF files are never touched.
	assert.NotContains(t, client.uploaded, "notes.txt")

	// Title and body derive from the file name.
	var stand servicenow.ArticleDraft
	for _, d := range client.created {
		if d.ShortDescription == "Policy Document: UK Standby Callout" {
			stand = d
		}
	}
	require.NotEmpty(t, stand.ShortDescription)
	assert.Equal(t, "cat-123", stand.KBCategory)
	assert.Equal(t, "draft", stand.WorkflowState)
	assert.Contains(t, stand.Text, "UK_Standby_Callout.pdf")
	assert.Contains(t, stand.Text, "2026-08-31 12:00:00")

	for _, rec := range report.Records {
		assert.True(t, rec.Published)
		assert.Contains(t, rec.ArticleURL, "kb_view.do?sysparm_article=")
	}
}

func TestRunEmptyFolder(t *testing.T) {
	dir := writePolicyDir(t)
	u := New(&stubClient{}, &backends.InMemoryBackend{}, dir, "cat-123")

	report, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Found)
	assert.NotEmpty(t, report.BatchID)
}

func TestRunCreateFailureSkipsFile(t *testing.T) {
	dir := writePolicyDir(t, "a.pdf")
	client := &stubClient{createErr: errors.New("HTTP 403")}
	u := New(client, &backends.InMemoryBackend{}, dir, "cat-123")

	report, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, client.uploaded)
	assert.Equal(t, "HTTP 403", report.Records[0].Error)
}

func TestRunPublishFailureLeavesDraft(t *testing.T) {
	dir := writePolicyDir(t, "a.pdf")
	client := &stubClient{publishErr: errors.New("HTTP 500")}
	u := New(client, &backends.InMemoryBackend{}, dir, "cat-123")

	report, err := u.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Records, 1)
	rec := report.Records[0]
	assert.False(t, rec.Published)
	assert.NotEmpty(t, rec.ArticleID)
	assert.NotEmpty(t, rec.AttachmentID)
	assert.Equal(t, 1, report.Failed)
}

func TestRunSkipsAlreadyRecordedFiles(t *testing.T) {
	dir := writePolicyDir(t, "a.pdf", "b.pdf")
	client := &stubClient{}
	ledger := &backends.InMemoryBackend{}
	u := New(client, ledger, dir, "cat-123")

	require.NoError(t, ledger.SetKey("a.pdf", Record{FileName: "a.pdf", Published: true}))

	report, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Uploaded)
	assert.Equal(t, []string{"b.pdf"}, client.uploaded)
}

func TestArticleTitle(t *testing.T) {
	assert.Equal(t, "Policy Document: UK Standby Callout Overtime",
		ArticleTitle("UK_Standby_Callout_Overtime.pdf"))
}
