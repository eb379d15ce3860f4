package server

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scoutline/board-member-search/internal/input"
	"github.com/scoutline/board-member-search/internal/search"
	"github.com/scoutline/board-member-search/internal/verify"
	"github.com/scoutline/board-member-search/pkg/pipeline/redact"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Board Member Search</title>
  <style>
    body { font-family: sans-serif; max-width: 640px; margin: 40px auto; }
    form { border: 1px solid #ccc; padding: 16px; margin-bottom: 24px; }
    .message { background: #fff3cd; border: 1px solid #ffe69c; padding: 12px; margin-bottom: 24px; }
  </style>
</head>
<body>
  <h1>Board Member Search</h1>
  {{if .Message}}<div class="message">{{.Message}}</div>{{end}}
  <form action="/process/search" method="post" enctype="multipart/form-data">
    <h2>Search</h2>
    <p>Upload an Excel spreadsheet (.xlsx) with a website URL column. Returns a CSV of extracted board members.</p>
    <input type="file" name="file" accept=".xlsx" required>
    <button type="submit">Process</button>
  </form>
  <form action="/process/verify" method="post" enctype="multipart/form-data">
    <h2>Verify</h2>
    <p>Upload a board member CSV. Returns a zip with the enhanced table and per-site feedback.</p>
    <input type="file" name="file" accept=".csv" required>
    <button type="submit">Process</button>
  </form>
</body>
</html>`

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index", gin.H{"Message": c.Query("message")})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleSearch runs the single-shot path: spreadsheet of URLs in, one
// combined CSV of extracted records out.
func (s *Server) handleSearch(c *gin.Context) {
	uploadPath, sessionDir, ok := s.acceptUpload(c, ".xlsx", ".xls",
		"Please upload an Excel file (.xlsx or .xls)")
	if !ok {
		return
	}
	defer os.Remove(uploadPath)

	f, err := os.Open(uploadPath)
	if err != nil {
		s.fail(c, "open upload", err)
		return
	}
	urls, err := input.ReadSiteURLs(f, s.cfg.URLColumn)
	f.Close()
	if err != nil {
		// The workbook parser reads .xlsx only; a legacy binary .xls
		// passes extension validation but fails here.
		if strings.EqualFold(filepath.Ext(uploadPath), ".xls") {
			s.redirectWithMessage(c, "Legacy .xls workbooks are not supported; please re-save the file as .xlsx")
			return
		}
		s.redirectWithMessage(c, "Could not read spreadsheet: "+redact.Secrets(err.Error()))
		return
	}
	if len(urls) == 0 {
		s.redirectWithMessage(c, "No website URLs found in column "+s.cfg.URLColumn)
		return
	}

	outPath := filepath.Join(sessionDir, search.OutputCSVName)
	summary, err := search.Run(c.Request.Context(), urls, s.records, outPath, s.opts, s.log)
	if err != nil {
		s.fail(c, "search run", err)
		return
	}
	s.log.Info("search batch done",
		zap.Int("sites", summary.Sites),
		zap.Int("with_data", summary.WithData),
		zap.Int("failed", summary.Failed),
	)

	c.FileAttachment(outPath, search.OutputCSVName)
}

// handleVerify runs the verification path: member CSV in, zip bundle with the
// enhanced table and the feedback CSV out.
func (s *Server) handleVerify(c *gin.Context) {
	uploadPath, sessionDir, ok := s.acceptUpload(c, ".csv", "",
		"Please upload a CSV file (.csv)")
	if !ok {
		return
	}
	defer os.Remove(uploadPath)

	f, err := os.Open(uploadPath)
	if err != nil {
		s.fail(c, "open upload", err)
		return
	}
	table, err := input.ReadMemberTable(f)
	f.Close()
	if err != nil {
		s.redirectWithMessage(c, "Could not read CSV: "+redact.Secrets(err.Error()))
		return
	}

	results, err := verify.Run(c.Request.Context(), table, s.sites, s.opts, s.log)
	if err != nil {
		s.fail(c, "verify run", err)
		return
	}
	bundle, err := verify.WriteArtifacts(sessionDir, table, results)
	if err != nil {
		s.fail(c, "write artifacts", err)
		return
	}

	c.FileAttachment(bundle, verify.BundleName)
}

// acceptUpload validates the multipart upload and saves it under the upload
// dir. It also creates the per-request session directory for artifacts. On a
// validation failure it redirects and returns ok=false.
func (s *Server) acceptUpload(c *gin.Context, ext1, ext2, extMessage string) (uploadPath, sessionDir string, ok bool) {
	file, err := c.FormFile("file")
	if err != nil {
		s.redirectWithMessage(c, "No file selected")
		return "", "", false
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ext1 && (ext2 == "" || ext != ext2) {
		s.redirectWithMessage(c, extMessage)
		return "", "", false
	}

	session := uuid.NewString()
	sessionDir = filepath.Join(s.cfg.DownloadDir, session)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		s.fail(c, "create session dir", err)
		return "", "", false
	}
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.fail(c, "create upload dir", err)
		return "", "", false
	}

	uploadPath = filepath.Join(s.cfg.UploadDir, session+"_"+filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		s.fail(c, "save upload", err)
		return "", "", false
	}

	s.log.Info("upload accepted",
		zap.String("filename", filepath.Base(file.Filename)),
		zap.String("session", session),
		zap.Int64("size", file.Size),
	)
	return uploadPath, sessionDir, true
}

func (s *Server) redirectWithMessage(c *gin.Context, msg string) {
	c.Redirect(http.StatusSeeOther, "/?message="+url.QueryEscape(msg))
}

func (s *Server) fail(c *gin.Context, what string, err error) {
	s.log.Error(what+" failed", zap.Error(err))
	c.String(http.StatusInternalServerError, "Processing failed: %s", redact.Secrets(err.Error()))
}
