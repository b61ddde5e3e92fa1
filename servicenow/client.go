package servicenow

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/rajeevsingh-dev/ServiceNow-Connector/configuration"
	logger "github.com/rajeevsingh-dev/ServiceNow-Connector/log"
)

var log = logger.Get()
var clientLogTag = "SN API"
var clientLogger = log.WithField("prefix", clientLogTag)

type Endpoint string

const (
	KNOWLEDGE       Endpoint = "/api/now/table/kb_knowledge"
	SYS_ATTACHMENT  Endpoint = "/api/now/table/sys_attachment"
	ATTACHMENT      Endpoint = "/api/now/attachment"
	ATTACHMENT_FILE Endpoint = "/api/now/attachment/file"
)

// APIError is returned for any non-success response, carrying the status
// code and whatever detail the instance put in its error envelope.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("servicenow: HTTP %d", e.Status)
	}
	return fmt.Sprintf("servicenow: HTTP %d: %s", e.Status, e.Detail)
}

// Client talks to a single ServiceNow instance.
type Client struct {
	instanceURL string
	username    string
	password    string
	useOAuth    bool
	httpClient  *http.Client
}

// NewClient builds a client from the loaded configuration. When the OAuth
// section is enabled the credentials flow is handled by the underlying
// transport and Basic Auth headers are never sent.
func NewClient(conf *configuration.Configuration) *Client {
	base := &http.Client{
		Timeout: time.Duration(conf.RequestTimeout) * time.Second,
	}
	if conf.SSLInsecureSkipVerify {
		base.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	c := &Client{
		instanceURL: strings.TrimRight(conf.InstanceURL, "/"),
		username:    conf.Username,
		password:    conf.Password,
		httpClient:  base,
	}

	if conf.OAuth.Enabled() {
		cc := clientcredentials.Config{
			ClientID:     conf.OAuth.ClientID,
			ClientSecret: conf.OAuth.ClientSecret,
			TokenURL:     conf.OAuth.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		c.httpClient = cc.Client(ctx)
		c.httpClient.Timeout = base.Timeout
		c.useOAuth = true
	}

	clientLogger.Info("Initialised ServiceNow client for: ", c.instanceURL)
	return c
}

// InstanceURL returns the normalised base URL of the instance.
func (c *Client) InstanceURL() string {
	return c.instanceURL
}

// ArticleURL is the browser view URL for a knowledge article.
func (c *Client) ArticleURL(sysID string) string {
	return c.instanceURL + "/kb_view.do?sysparm_article=" + sysID
}

// Dispatch issues a request against the instance and returns the raw body.
// Any status above 201 is surfaced as an *APIError.
func (c *Client) Dispatch(ctx context.Context, method string, target Endpoint, body io.Reader, contentType string) ([]byte, error) {
	preparedEndpoint := c.instanceURL + string(target)

	clientLogger.Debug("Calling: ", method, " ", preparedEndpoint)
	newRequest, err := http.NewRequestWithContext(ctx, method, preparedEndpoint, body)
	if err != nil {
		return nil, err
	}

	newRequest.Header.Set("Accept", "application/json")
	if contentType != "" {
		newRequest.Header.Set("Content-Type", contentType)
	}
	if !c.useOAuth {
		newRequest.SetBasicAuth(c.username, c.password)
	}

	response, reqErr := c.httpClient.Do(newRequest)
	if reqErr != nil {
		return []byte{}, reqErr
	}

	retBody, bErr := c.readBody(response)
	if bErr != nil {
		return []byte{}, bErr
	}

	clientLogger.Debug("GOT: ", string(retBody))

	if response.StatusCode > 201 {
		clientLogger.Warning("Response code was: ", response.StatusCode)
		return retBody, &APIError{Status: response.StatusCode, Detail: errorDetail(retBody)}
	}

	return retBody, nil
}

func (c *Client) readBody(response *http.Response) ([]byte, error) {
	defer response.Body.Close()
	contents, err := io.ReadAll(response.Body)
	if err != nil {
		return []byte(""), err
	}
	return contents, nil
}

// DispatchAndDecode dispatches and unmarshals the response into retVal.
func (c *Client) DispatchAndDecode(ctx context.Context, method string, target Endpoint, retVal interface{}, body io.Reader, contentType string) error {
	retBytes, dispatchErr := c.Dispatch(ctx, method, target, body, contentType)
	if dispatchErr != nil {
		return dispatchErr
	}
	return json.Unmarshal(retBytes, retVal)
}

// errorDetail digs the human-readable message out of a ServiceNow error
// envelope ({"error": {"message": ..., "detail": ...}}).
func errorDetail(raw []byte) string {
	parsed, err := gabs.ParseJSON(raw)
	if err != nil {
		return ""
	}
	msg, _ := parsed.Path("error.message").Data().(string)
	detail, _ := parsed.Path("error.detail").Data().(string)
	if msg != "" && detail != "" {
		return msg + ": " + detail
	}
	if msg != "" {
		return msg
	}
	return detail
}

// resultSysID pulls result.sys_id from a create response.
func resultSysID(raw []byte) (string, error) {
	parsed, err := gabs.ParseJSON(raw)
	if err != nil {
		return "", err
	}
	sysID, ok := parsed.Path("result.sys_id").Data().(string)
	if !ok || sysID == "" {
		return "", fmt.Errorf("servicenow: response carried no result.sys_id")
	}
	return sysID, nil
}

// CreateArticle creates a kb_knowledge record and returns its sys_id.
func (c *Client) CreateArticle(ctx context.Context, draft ArticleDraft) (string, error) {
	if draft.WorkflowState == "" {
		draft.WorkflowState = "draft"
	}

	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return "", err
	}

	retBytes, dErr := c.Dispatch(ctx, http.MethodPost, KNOWLEDGE, bytes.NewBuffer(draftJSON), "application/json")
	if dErr != nil {
		return "", dErr
	}

	sysID, pErr := resultSysID(retBytes)
	if pErr != nil {
		return "", pErr
	}

	clientLogger.Info("Created knowledge article: ", draft.ShortDescription, " (ID: ", sysID, ")")
	return sysID, nil
}

// PublishArticle moves a draft article to the published workflow state.
func (c *Client) PublishArticle(ctx context.Context, sysID string) error {
	target := Endpoint(strings.Join([]string{string(KNOWLEDGE), sysID}, "/"))

	body := bytes.NewBufferString(`{"workflow_state":"published"}`)
	var ret interface{}
	if err := c.DispatchAndDecode(ctx, http.MethodPatch, target, &ret, body, "application/json"); err != nil {
		return err
	}

	clientLogger.Info("Published article ID: ", sysID)
	return nil
}

// UploadAttachment posts a file to the Attachment API against the given
// record and returns the attachment sys_id.
func (c *Client) UploadAttachment(ctx context.Context, tableName, tableSysID, filePath string) (string, error) {
	fileName := filepath.Base(filePath)

	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err = writer.WriteField("table_name", tableName); err != nil {
		return "", err
	}
	if err = writer.WriteField("table_sys_id", tableSysID); err != nil {
		return "", err
	}

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	partHeader.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(part, f); err != nil {
		return "", err
	}
	if err = writer.Close(); err != nil {
		return "", err
	}

	retBytes, dErr := c.Dispatch(ctx, http.MethodPost, ATTACHMENT_FILE, &buf, writer.FormDataContentType())
	if dErr != nil {
		return "", dErr
	}

	sysID, pErr := resultSysID(retBytes)
	if pErr != nil {
		return "", pErr
	}

	clientLogger.Info("Uploaded attachment: ", fileName, " (ID: ", sysID, ")")
	return sysID, nil
}

// ListArticles returns up to limit knowledge articles, any workflow state.
func (c *Client) ListArticles(ctx context.Context, limit int) ([]Article, error) {
	params := url.Values{}
	params.Set("sysparm_fields", "sys_id,number,short_description,text,category,sys_updated_on,workflow_state")
	params.Set("sysparm_limit", fmt.Sprintf("%d", limit))
	target := Endpoint(string(KNOWLEDGE) + "?" + params.Encode())

	retList := articleListResult{}
	if err := c.DispatchAndDecode(ctx, http.MethodGet, target, &retList, nil, ""); err != nil {
		return nil, err
	}

	clientLogger.Info("Retrieved ", len(retList.Result), " knowledge articles")
	return retList.Result, nil
}

// ListAttachments returns the attachments hanging off a kb_knowledge record.
func (c *Client) ListAttachments(ctx context.Context, articleSysID string) ([]Attachment, error) {
	params := url.Values{}
	params.Set("sysparm_query", "table_name=kb_knowledge^table_sys_id="+articleSysID)
	params.Set("sysparm_fields", "sys_id,file_name,content_type,size_bytes")
	target := Endpoint(string(SYS_ATTACHMENT) + "?" + params.Encode())

	retList := attachmentListResult{}
	if err := c.DispatchAndDecode(ctx, http.MethodGet, target, &retList, nil, ""); err != nil {
		return nil, err
	}

	clientLogger.Debug("Found ", len(retList.Result), " attachments for article ", articleSysID)
	return retList.Result, nil
}

// DownloadAttachment fetches the raw bytes of an attachment.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentSysID string) ([]byte, error) {
	target := Endpoint(strings.Join([]string{string(ATTACHMENT), attachmentSysID, "file"}, "/"))

	content, err := c.Dispatch(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return nil, err
	}

	clientLogger.Debug("Downloaded attachment ", attachmentSysID, ": ", len(content), " bytes")
	return content, nil
}
