package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/appraisal-gallery/internal/classify"
	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
	"github.com/kozaktomas/appraisal-gallery/internal/report"
)

func photoList(tall, wide int) []map[string]string {
	var photos []map[string]string
	for i := range tall {
		photos = append(photos, map[string]string{"id": fmt.Sprintf("t%d", i), "source_url": fmt.Sprintf("https://cdn.example.com/tall-%d.jpg", i)})
	}
	for i := range wide {
		photos = append(photos, map[string]string{"id": fmt.Sprintf("w%d", i), "source_url": fmt.Sprintf("https://cdn.example.com/wide-%d.jpg", i)})
	}
	return photos
}

func layoutBody(photos []map[string]string) map[string]any {
	return map[string]any{
		"photos": photos,
		"text": map[string]string{
			"documentary_status":  "Registered",
			"influencing_factors": "None",
		},
		"document": map[string]any{
			"cover": map[string]string{"title": "Appraisal 42"},
		},
	}
}

func TestLayoutHandler_Layout(t *testing.T) {
	handler := newTestLayoutHandler(t, newStubProber())

	recorder := httptest.NewRecorder()
	handler.Layout(recorder, jsonRequest(t, "POST", "/api/v1/layout", layoutBody(photoList(5, 4))))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var result LayoutResponse
	parseJSONResponse(t, recorder, &result)

	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if !result.Plan.MergeApplied || result.Plan.MergedPhotos != 4 {
		t.Errorf("expected the 4 landscape photos to merge, got %+v", result.Plan)
	}
	if result.Plan.TextPlacement != string(gallery.TextDedicatedPage) {
		t.Errorf("expected dedicated text page, got %s", result.Plan.TextPlacement)
	}
	if len(result.Pages) != 8 {
		t.Fatalf("expected 8 pages, got %d", len(result.Pages))
	}
	if result.Pages[0].Kind != gallery.PageCover || result.Pages[0].Fields["title"] != "Appraisal 42" {
		t.Errorf("unexpected cover page %+v", result.Pages[0])
	}
	if result.Pages[4].Kind != gallery.PagePhotoLandscapeMerged {
		t.Errorf("expected merged photo page at position 5, got %s", result.Pages[4].Kind)
	}
}

func TestLayoutHandler_AssignsMissingIDs(t *testing.T) {
	handler := newTestLayoutHandler(t, newStubProber())
	photos := []map[string]string{{"source_url": "https://cdn.example.com/tall.jpg"}}

	recorder := httptest.NewRecorder()
	handler.Layout(recorder, jsonRequest(t, "POST", "/api/v1/layout", layoutBody(photos)))

	assertStatusCode(t, recorder, http.StatusOK)
	var result LayoutResponse
	parseJSONResponse(t, recorder, &result)

	for _, p := range result.Pages {
		for _, photo := range p.Photos {
			if photo.ID == "" {
				t.Error("expected a generated photo ID")
			}
		}
	}
}

func TestLayoutHandler_AnnotatedURLAndKnownOrientation(t *testing.T) {
	handler := newTestLayoutHandler(t, newStubProber())
	photos := []map[string]string{{
		"id":            "p1",
		"source_url":    "https://cdn.example.com/tall.jpg",
		"annotated_url": "https://cdn.example.com/tall-annotated.jpg",
		"orientation":   "landscape",
	}}

	recorder := httptest.NewRecorder()
	handler.Layout(recorder, jsonRequest(t, "POST", "/api/v1/layout", layoutBody(photos)))

	assertStatusCode(t, recorder, http.StatusOK)
	var result LayoutResponse
	parseJSONResponse(t, recorder, &result)

	var found bool
	for _, p := range result.Pages {
		for _, photo := range p.Photos {
			found = true
			if p.Kind != gallery.PagePhotoLandscape {
				t.Errorf("expected the known orientation to be kept, got page %s", p.Kind)
			}
			if photo.URL != "https://cdn.example.com/tall-annotated.jpg" {
				t.Errorf("expected annotated URL, got %s", photo.URL)
			}
		}
	}
	if !found {
		t.Fatal("expected the photo to be placed")
	}
}

func TestLayoutHandler_InvalidRequests(t *testing.T) {
	handler := newTestLayoutHandler(t, newStubProber())

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed JSON", `{"photos": [`, errInvalidRequestBody},
		{"missing source", `{"photos": [{"id": "a"}]}`, "photo 0: source_url is required"},
		{"bad orientation", `{"photos": [{"source_url": "a.jpg", "orientation": "square"}]}`, "photo 0: invalid orientation"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/layout", strings.NewReader(tc.body))
			recorder := httptest.NewRecorder()

			handler.Layout(recorder, req)

			assertStatusCode(t, recorder, http.StatusBadRequest)
			assertJSONError(t, recorder, tc.message)
		})
	}
}

func TestLayoutHandler_NormalizesText(t *testing.T) {
	handler := newTestLayoutHandler(t, newStubProber())
	body := layoutBody(nil)
	body["text"] = map[string]string{
		"documentary_status":  "  Café ",
		"influencing_factors": "x",
	}

	recorder := httptest.NewRecorder()
	handler.Layout(recorder, jsonRequest(t, "POST", "/api/v1/layout", body))

	assertStatusCode(t, recorder, http.StatusOK)
	var result LayoutResponse
	parseJSONResponse(t, recorder, &result)

	for _, p := range result.Pages {
		if p.Kind == gallery.PageText {
			if p.Text == nil || p.Text.DocumentaryStatus != "Café" {
				t.Errorf("expected normalized text, got %+v", p.Text)
			}
			return
		}
	}
	t.Fatal("expected a dedicated text page")
}

func TestLayoutHandler_DocumentFieldsUnchanged(t *testing.T) {
	handler := newTestLayoutHandler(t, newStubProber())
	intro := "  line one\n   indented\n"
	place := "Cafe\u0301"
	body := layoutBody(nil)
	body["document"] = map[string]any{
		"presentation": map[string]string{"intro": intro, "place": place},
	}

	recorder := httptest.NewRecorder()
	handler.Layout(recorder, jsonRequest(t, "POST", "/api/v1/layout", body))

	assertStatusCode(t, recorder, http.StatusOK)
	var result LayoutResponse
	parseJSONResponse(t, recorder, &result)

	presentation := result.Pages[1]
	if presentation.Section != gallery.SectionPresentation {
		t.Fatalf("expected presentation page at position 2, got %s", presentation.Section)
	}
	if presentation.Fields["intro"] != intro {
		t.Errorf("intro changed: %q", presentation.Fields["intro"])
	}
	if presentation.Fields["place"] != place {
		t.Errorf("place changed: %q", presentation.Fields["place"])
	}
}

func TestLayoutHandler_Report(t *testing.T) {
	handler := newTestLayoutHandler(t, newStubProber())

	recorder := httptest.NewRecorder()
	handler.Report(recorder, jsonRequest(t, "POST", "/api/v1/layout/report", layoutBody(photoList(10, 14))))

	assertStatusCode(t, recorder, http.StatusOK)
	var result report.ExportReport
	parseJSONResponse(t, recorder, &result)

	if result.PhotoCount != 24 {
		t.Errorf("expected 24 photos, got %d", result.PhotoCount)
	}
	// cover, 3 narrative, 2 portrait, 2 landscape, 2 closing
	if result.PageCount != 10 {
		t.Errorf("expected 10 pages, got %d", result.PageCount)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestLayoutHandler_Preview(t *testing.T) {
	handler := newTestLayoutHandler(t, newStubProber())

	recorder := httptest.NewRecorder()
	handler.Preview(recorder, jsonRequest(t, "POST", "/api/v1/layout/preview", layoutBody(photoList(2, 0))))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "text/html; charset=utf-8")
	body := recorder.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("expected an HTML document")
	}
	if !strings.Contains(body, "https://cdn.example.com/tall-1.jpg") {
		t.Error("expected photo URLs in the preview")
	}
}

func TestLayoutHandler_SupersededRequest(t *testing.T) {
	prober := newStubProber()
	handler := newTestLayoutHandler(t, prober)

	slow := layoutBody([]map[string]string{{"id": "s", "source_url": "https://cdn.example.com/slow.jpg"}})
	slow["document_id"] = "doc-1"
	fast := layoutBody(photoList(1, 0))
	fast["document_id"] = "doc-1"

	first := httptest.NewRecorder()
	firstReq := jsonRequest(t, "POST", "/api/v1/layout", slow)
	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.Layout(first, firstReq)
	}()

	select {
	case <-prober.started:
	case <-time.After(5 * time.Second):
		t.Fatal("slow probe never started")
	}

	second := httptest.NewRecorder()
	handler.Layout(second, jsonRequest(t, "POST", "/api/v1/layout", fast))
	assertStatusCode(t, second, http.StatusOK)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("superseded request never returned")
	}
	assertStatusCode(t, first, http.StatusConflict)
	assertJSONError(t, first, "superseded by a newer layout request")
}

func TestNewLayoutHandler_InvalidCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.Layout.Capacities.Landscape = 0
	sessions := classify.NewSessions(classify.NewClassifier(newStubProber()), time.Minute)

	_, err := NewLayoutHandler(cfg, sessions)
	if !errors.Is(err, gallery.ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}
