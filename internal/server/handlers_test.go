package server_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/scoutline/board-member-search/internal/config"
	"github.com/scoutline/board-member-search/internal/extract"
	"github.com/scoutline/board-member-search/internal/server"
	"github.com/scoutline/board-member-search/internal/verify"
	"github.com/scoutline/board-member-search/pkg/pipeline/worker"
)

type stubSites struct {
	report extract.SiteReport
	err    error
}

func (s *stubSites) ExtractSite(context.Context, string) (extract.SiteReport, error) {
	return s.report, s.err
}

type stubRecords struct {
	records []extract.RawRecord
	err     error
}

func (s *stubRecords) ExtractRecords(context.Context, string) ([]extract.RawRecord, error) {
	return s.records, s.err
}

func newTestServer(t *testing.T, sites extract.SiteExtractor, records extract.RecordExtractor) *server.Server {
	t.Helper()
	cfg := config.Server{
		Addr:        ":0",
		UploadDir:   t.TempDir(),
		DownloadDir: t.TempDir(),
		MaxUploadMB: 16,
		URLColumn:   "Portfolio company Website",
	}
	return server.New(cfg, sites, records, worker.Options{Workers: 1}, zap.NewNop())
}

func multipartFile(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func buildWorkbook(t *testing.T, urls ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Portfolio company Website"))
	for i, u := range urls {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, u))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubSites{}, &stubRecords{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestIndexShowsMessage(t *testing.T) {
	srv := newTestServer(t, &stubSites{}, &stubRecords{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?message=No+file+selected", nil)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No file selected")
}

func TestSearch_RejectsNonExcelUpload(t *testing.T) {
	srv := newTestServer(t, &stubSites{}, &stubRecords{})

	body, contentType := multipartFile(t, "file", "urls.txt", []byte("https://acme.example"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process/search", body)
	req.Header.Set("Content-Type", contentType)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "Excel")
}

func TestSearch_LegacyXLSGetsActionableMessage(t *testing.T) {
	srv := newTestServer(t, &stubSites{}, &stubRecords{})

	// A real legacy .xls is a binary OLE container the parser cannot read;
	// arbitrary bytes stand in for one here.
	body, contentType := multipartFile(t, "file", "companies.xls", []byte{0xd0, 0xcf, 0x11, 0xe0, 0x00})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process/search", body)
	req.Header.Set("Content-Type", contentType)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "re-save+the+file+as+.xlsx")
}

func TestSearch_MissingFileRedirects(t *testing.T) {
	srv := newTestServer(t, &stubSites{}, &stubRecords{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process/search", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "No+file+selected")
}

func TestSearch_ReturnsCombinedCSV(t *testing.T) {
	records := &stubRecords{records: []extract.RawRecord{
		{"First Name": "Ada", "Last Name": "Lovelace", "Title": "Chair"},
	}}
	srv := newTestServer(t, &stubSites{}, records)

	workbook := buildWorkbook(t, "https://acme.example")
	body, contentType := multipartFile(t, "file", "companies.xlsx", workbook)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process/search", body)
	req.Header.Set("Content-Type", contentType)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "combined_board_members.csv")
	assert.Contains(t, w.Body.String(), "Ada")
	assert.Contains(t, w.Body.String(), "Website URL")
}

func TestVerify_RejectsNonCSVUpload(t *testing.T) {
	srv := newTestServer(t, &stubSites{}, &stubRecords{})

	body, contentType := multipartFile(t, "file", "members.xlsx", []byte("not a csv"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process/verify", body)
	req.Header.Set("Content-Type", contentType)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "CSV")
}

func TestVerify_ReturnsFeedbackBundle(t *testing.T) {
	sites := &stubSites{report: extract.SiteReport{
		BoardMembers: []extract.Member{{FirstName: "Grace", LastName: "Hopper", Title: "Chair"}},
		Status:       extract.StatusSuccess,
	}}
	srv := newTestServer(t, sites, &stubRecords{})

	csvBody := []byte("Website URL,Status,Comments,First Name,Last Name,Title,Biography\nhttps://acme.example,,,,,,\n")
	body, contentType := multipartFile(t, "file", "members.csv", csvBody)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process/verify", body)
	req.Header.Set("Content-Type", contentType)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), verify.BundleName)

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{verify.EnhancedCSVName, verify.FeedbackCSVName}, names)

	for _, f := range zr.File {
		if f.Name != verify.EnhancedCSVName {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(b), "Grace"), "enhanced table should carry the new member")
	}
}

func TestVerify_BadTableRedirects(t *testing.T) {
	srv := newTestServer(t, &stubSites{}, &stubRecords{})

	body, contentType := multipartFile(t, "file", "members.csv", []byte("Only Column\nvalue\n"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process/verify", body)
	req.Header.Set("Content-Type", contentType)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "Could+not+read+CSV")
}
