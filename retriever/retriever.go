package retriever

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	logger "github.com/rajeevsingh-dev/ServiceNow-Connector/log"
	"github.com/rajeevsingh-dev/ServiceNow-Connector/pdftext"
	"github.com/rajeevsingh-dev/ServiceNow-Connector/servicenow"
)

var log = logger.Get()
var RetrieverLogTag = "RETRIEVER"
var retrieverLogger = log.WithField("prefix", RetrieverLogTag)

// PreviewChars is how much extracted text ShowTop prints per document.
const PreviewChars = 500

// Client is the slice of the ServiceNow API the retriever reads from.
type Client interface {
	ListArticles(ctx context.Context, limit int) ([]servicenow.Article, error)
	ListAttachments(ctx context.Context, articleSysID string) ([]servicenow.Attachment, error)
	DownloadAttachment(ctx context.Context, attachmentSysID string) ([]byte, error)
	ArticleURL(sysID string) string
}

// ArticleInfo is the article context kept with each PDF attachment.
type ArticleInfo struct {
	SysID string
	Title string
	URL   string
}

// PDFAttachment pairs an attachment with the article it hangs off.
type PDFAttachment struct {
	Article    ArticleInfo
	Attachment servicenow.Attachment
}

// Retriever lists knowledge articles and surfaces their PDF attachments.
type Retriever struct {
	client       Client
	articleLimit int
	maxParallel  int
}

func New(client Client, articleLimit, maxParallel int) *Retriever {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Retriever{client: client, articleLimit: articleLimit, maxParallel: maxParallel}
}

// CollectPDFAttachments lists articles and fetches their attachment sets
// concurrently, bounded by maxParallel. The result preserves article order.
// An attachment lookup that fails only costs that article its entries.
func (r *Retriever) CollectPDFAttachments(ctx context.Context) ([]PDFAttachment, error) {
	articles, err := r.client.ListArticles(ctx, r.articleLimit)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		retrieverLogger.Warning("No articles found. Check your ServiceNow instance or credentials.")
		return nil, nil
	}

	retrieverLogger.Info("Searching for PDF attachments across ", len(articles), " articles")

	perArticle := make([][]servicenow.Attachment, len(articles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxParallel)

	for i, article := range articles {
		i, article := i, article
		g.Go(func() error {
			attachments, aErr := r.client.ListAttachments(gctx, article.SysID)
			if aErr != nil {
				retrieverLogger.Error("Error retrieving attachments for ", article.SysID, ": ", aErr)
				return nil
			}
			perArticle[i] = attachments
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	var found []PDFAttachment
	for i, article := range articles {
		title := article.ShortDescription
		if title == "" {
			title = "Untitled"
		}
		info := ArticleInfo{
			SysID: article.SysID,
			Title: title,
			URL:   r.client.ArticleURL(article.SysID),
		}
		for _, attachment := range perArticle[i] {
			if IsPDF(attachment) {
				found = append(found, PDFAttachment{Article: info, Attachment: attachment})
			}
		}
	}

	retrieverLogger.Info("Found ", len(found), " PDF attachments in total")
	return found, nil
}

// ShowTop downloads the first n collected PDFs, extracts their text and
// writes a preview of each to w.
func (r *Retriever) ShowTop(ctx context.Context, n int, w io.Writer) error {
	collected, err := r.CollectPDFAttachments(ctx)
	if err != nil {
		return err
	}

	if len(collected) == 0 {
		writeEmptyState(w)
		return nil
	}

	top := collected
	if len(top) > n {
		top = top[:n]
	}

	fmt.Fprintf(w, "Found %d total PDF attachments\n", len(collected))
	fmt.Fprintf(w, "Processing top %d PDF documents...\n", len(top))

	for i, item := range top {
		fmt.Fprintf(w, "\n--- PDF #%d/%d ---\n", i+1, len(top))
		fmt.Fprintf(w, "Filename: %s\n", item.Attachment.FileName)
		fmt.Fprintf(w, "Size: %s bytes\n", item.Attachment.SizeBytes)
		fmt.Fprintf(w, "From Article: %s\n", item.Article.Title)
		fmt.Fprintf(w, "Article URL: %s\n", item.Article.URL)

		content, dErr := r.client.DownloadAttachment(ctx, item.Attachment.SysID)
		if dErr != nil {
			retrieverLogger.Error("Error downloading attachment ", item.Attachment.SysID, ": ", dErr)
			fmt.Fprintln(w, "Failed to download PDF content")
			continue
		}

		text, xErr := pdftext.ExtractBytes(content)
		if xErr != nil {
			text = fmt.Sprintf("[PDF extraction error: %v]", xErr)
		}

		fmt.Fprintln(w, "\nPDF CONTENT:")
		fmt.Fprintln(w, strings.Repeat("-", 40))
		fmt.Fprintln(w, pdftext.Preview(text, PreviewChars))
		fmt.Fprintln(w, strings.Repeat("-", 40))
	}

	fmt.Fprintf(w, "\n===== Top %d PDF Documents Processed =====\n", len(top))
	return nil
}

// IsPDF keeps an attachment when either the declared content type or the
// file extension says PDF.
func IsPDF(a servicenow.Attachment) bool {
	return a.ContentType == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(a.FileName), ".pdf")
}

func writeEmptyState(w io.Writer) {
	fmt.Fprintln(w, "No PDF attachments found across any articles.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Possible reasons:")
	fmt.Fprintln(w, "1. No policy documents with PDF attachments exist in your ServiceNow instance")
	fmt.Fprintln(w, "2. Knowledge Management may not be properly configured")
	fmt.Fprintln(w, "3. Authentication or permission issues")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Troubleshooting tips:")
	fmt.Fprintln(w, "- Verify your ServiceNow credentials are correct")
	fmt.Fprintln(w, "- Check that Knowledge Management is enabled in your instance")
	fmt.Fprintln(w, "- Upload some PDF attachments to knowledge articles")
}
