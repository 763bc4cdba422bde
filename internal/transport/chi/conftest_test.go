package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cutelabs/ragd/internal/domain"
	healthuc "github.com/cutelabs/ragd/internal/usecase/health"
)

// --- Mocks ---

type mockChat struct {
	answerFn func(ctx context.Context, question, provider string) (string, error)
}

func (m *mockChat) Answer(ctx context.Context, question, provider string) (string, error) {
	return m.answerFn(ctx, question, provider)
}

type mockDocuments struct {
	upsertFn  func(ctx context.Context, doc domain.Document) error
	getFn     func(ctx context.Context, id string) (domain.Document, error)
	deleteFn  func(ctx context.Context, id string) error
	listIDsFn func(ctx context.Context) ([]string, error)
}

func (m *mockDocuments) Upsert(ctx context.Context, doc domain.Document) error {
	return m.upsertFn(ctx, doc)
}

func (m *mockDocuments) Get(ctx context.Context, id string) (domain.Document, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocuments) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDocuments) ListIDs(ctx context.Context) ([]string, error) {
	return m.listIDsFn(ctx)
}

type mockSegment struct {
	divideFn func(ctx context.Context, text string) ([]domain.Segment, error)
}

func (m *mockSegment) Divide(ctx context.Context, text string) ([]domain.Segment, error) {
	return m.divideFn(ctx, text)
}

type mockSettings struct {
	updateFn func(ctx context.Context, n int) (int, error)
}

func (m *mockSettings) Update(ctx context.Context, n int) (int, error) {
	return m.updateFn(ctx, n)
}

type mockRetrieval struct {
	buildFn func(ctx context.Context, question string) (string, error)
}

func (m *mockRetrieval) BuildContext(ctx context.Context, question string) (string, error) {
	return m.buildFn(ctx, question)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Helpers ---

type serverMocks struct {
	chat      *mockChat
	documents *mockDocuments
	segment   *mockSegment
	settings  *mockSettings
	retrieval *mockRetrieval
	pinger    *mockPinger
}

func newTestServer(t *testing.T, mocks serverMocks) http.Handler {
	t.Helper()

	if mocks.chat == nil {
		mocks.chat = &mockChat{answerFn: func(context.Context, string, string) (string, error) {
			t.Fatal("unexpected chat call")
			return "", nil
		}}
	}
	if mocks.documents == nil {
		mocks.documents = &mockDocuments{}
	}
	if mocks.segment == nil {
		mocks.segment = &mockSegment{divideFn: func(context.Context, string) ([]domain.Segment, error) {
			t.Fatal("unexpected segment call")
			return nil, nil
		}}
	}
	if mocks.settings == nil {
		mocks.settings = &mockSettings{updateFn: func(context.Context, int) (int, error) {
			t.Fatal("unexpected settings call")
			return 0, nil
		}}
	}
	if mocks.retrieval == nil {
		mocks.retrieval = &mockRetrieval{buildFn: func(context.Context, string) (string, error) {
			t.Fatal("unexpected retrieval call")
			return "", nil
		}}
	}
	if mocks.pinger == nil {
		mocks.pinger = &mockPinger{}
	}

	srv := NewServer(
		mocks.chat,
		mocks.documents,
		mocks.segment,
		mocks.settings,
		mocks.retrieval,
		healthuc.New(mocks.pinger, nil),
		zap.NewNop(),
	)

	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if rr.Code != wantStatus {
		t.Errorf("status = %d, want %d (body: %s)", rr.Code, wantStatus, rr.Body.String())
	}
	var resp errorResponse
	decodeBody(t, rr, &resp)
	if resp.Code != wantCode {
		t.Errorf("error code = %q, want %q", resp.Code, wantCode)
	}
}
