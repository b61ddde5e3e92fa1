package uploader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"

	logger "github.com/rajeevsingh-dev/ServiceNow-Connector/log"
	"github.com/rajeevsingh-dev/ServiceNow-Connector/servicenow"
)

var log = logger.Get()
var UploaderLogTag = "UPLOADER"

// KnowledgeTable is the record table attachments are filed against.
const KnowledgeTable = "kb_knowledge"

// Client is the slice of the ServiceNow API the uploader drives.
type Client interface {
	CreateArticle(ctx context.Context, draft servicenow.ArticleDraft) (string, error)
	UploadAttachment(ctx context.Context, tableName, tableSysID, filePath string) (string, error)
	PublishArticle(ctx context.Context, sysID string) error
	ArticleURL(sysID string) string
}

// Ledger records per-file outcomes, keyed by file name.
type Ledger interface {
	Init()
	SetKey(key string, val interface{}) error
	GetKey(key string) (interface{}, error)
}

// Record is the ledger entry for one processed file.
type Record struct {
	FileName     string
	ArticleID    string
	AttachmentID string
	ArticleURL   string
	Published    bool
	Error        string
}

// Report summarises one Run.
type Report struct {
	BatchID  string
	Found    int
	Uploaded int
	Failed   int
	Skipped  int
	Records  []Record
}

// Uploader walks a policy folder and runs the create/attach/publish
// workflow for every PDF in it.
type Uploader struct {
	client     Client
	ledger     Ledger
	policyDir  string
	kbCategory string
	now        func() time.Time
}

func New(client Client, ledger Ledger, policyDir, kbCategory string) *Uploader {
	ledger.Init()
	return &Uploader{
		client:     client,
		ledger:     ledger,
		policyDir:  policyDir,
		kbCategory: kbCategory,
		now:        time.Now,
	}
}

// Run processes every *.pdf in the policy folder. Per-file failures are
// logged and recorded; only a filesystem-level failure aborts the run.
func (u *Uploader) Run(ctx context.Context) (Report, error) {
	batchID := newBatchID()
	runLogger := log.WithFields(logrus.Fields{"prefix": UploaderLogTag, "batch": batchID})

	pdfFiles, err := filepath.Glob(filepath.Join(u.policyDir, "*.pdf"))
	if err != nil {
		return Report{BatchID: batchID}, err
	}

	if len(pdfFiles) == 0 {
		runLogger.Warning("No PDF files found in folder: ", u.policyDir)
		return Report{BatchID: batchID}, nil
	}

	runLogger.Infof("Found %d PDF files to upload", len(pdfFiles))

	report := Report{BatchID: batchID, Found: len(pdfFiles)}
	for _, pdfFile := range pdfFiles {
		fileName := filepath.Base(pdfFile)

		if _, err := u.ledger.GetKey(fileName); err == nil {
			runLogger.Info("Already processed in this run, skipping: ", fileName)
			report.Skipped++
			continue
		}

		record := u.processFile(ctx, runLogger, pdfFile)
		if err := u.ledger.SetKey(fileName, record); err != nil {
			runLogger.Error("Couldn't record outcome for ", fileName, ": ", err)
		}
		report.Records = append(report.Records, record)

		if record.Published {
			report.Uploaded++
		} else {
			report.Failed++
		}
	}

	runLogger.Infof("Upload complete: %d published, %d failed, %d skipped",
		report.Uploaded, report.Failed, report.Skipped)
	return report, nil
}

func (u *Uploader) processFile(ctx context.Context, runLogger *logrus.Entry, pdfFile string) Record {
	fileName := filepath.Base(pdfFile)
	record := Record{FileName: fileName}

	runLogger.Info("Processing: ", fileName)

	draft := servicenow.ArticleDraft{
		ShortDescription: ArticleTitle(fileName),
		Text:             u.articleBody(fileName),
		KBCategory:       u.kbCategory,
		WorkflowState:    "draft",
	}

	articleID, err := u.client.CreateArticle(ctx, draft)
	if err != nil {
		runLogger.Error("Failed to create article for ", fileName, ": ", err)
		record.Error = err.Error()
		return record
	}
	record.ArticleID = articleID
	record.ArticleURL = u.client.ArticleURL(articleID)

	attachmentID, err := u.client.UploadAttachment(ctx, KnowledgeTable, articleID, pdfFile)
	if err != nil {
		runLogger.Error("Failed to upload attachment for ", fileName, ": ", err)
		record.Error = err.Error()
		return record
	}
	record.AttachmentID = attachmentID

	if err = u.client.PublishArticle(ctx, articleID); err != nil {
		runLogger.Error("Failed to publish article for ", fileName, ": ", err)
		record.Error = err.Error()
		return record
	}
	record.Published = true

	runLogger.Info("Successfully published article with attachment")
	runLogger.Info("Article URL: ", record.ArticleURL)
	return record
}

// ArticleTitle derives the article short description from a PDF file name.
func ArticleTitle(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return "Policy Document: " + strings.ReplaceAll(base, "_", " ")
}

func (u *Uploader) articleBody(fileName string) string {
	return fmt.Sprintf(`<h2>Policy Document</h2>
<p>This is an automatically uploaded policy document.</p>
<p>File: %s</p>
<p>Upload Date: %s</p>
<p>Please see the attached PDF for complete information.</p>`,
		fileName, u.now().Format("2006-01-02 15:04:05"))
}

func newBatchID() string {
	id, err := uuid.NewV4()
	if err != nil {
		panic(err)
	}
	return id.String()
}
