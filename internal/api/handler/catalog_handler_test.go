package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/acme/catalog-system/internal/core/domain"
)

const testID = "00000000-0000-0000-0000-0000000000aa"

type stubBookService struct {
	findByIDFn func(id string) (*domain.Book, error)
	createFn   func(b *domain.Book) (*domain.Book, error)
	updateFn   func(id string, b *domain.Book, token string) (int, error)
}

func (s *stubBookService) FindByID(_ context.Context, id string) (*domain.Book, error) {
	return s.findByIDFn(id)
}

func (s *stubBookService) FindAll(context.Context) ([]*domain.Book, error) { return nil, nil }

func (s *stubBookService) Create(_ context.Context, b *domain.Book) (*domain.Book, error) {
	return s.createFn(b)
}

func (s *stubBookService) Update(_ context.Context, id string, b *domain.Book, token string) (int, error) {
	return s.updateFn(id, b, token)
}

func (s *stubBookService) Delete(context.Context, string) (bool, error) { return false, nil }

func bookContext(method, body string, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := newEcho()
	req := httptest.NewRequest(method, "/api/books/"+testID, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(testID)
	return c, rec
}

func TestCatalogHandler_Update_MissingIfMatch(t *testing.T) {
	stub := &stubBookService{
		updateFn: func(string, *domain.Book, string) (int, error) {
			t.Fatalf("should not be called")
			return 0, nil
		},
	}
	h := NewCatalogHandler(stub, domain.BookSchema, "/api/books")

	c, _ := bookContext(http.MethodPut, `{"title":"Alpha"}`, map[string]string{
		echo.HeaderContentType: echo.MIMEApplicationJSON,
	})
	if err := h.Update(c); !errors.Is(err, domain.ErrVersionMissing) {
		t.Fatalf("expected ErrVersionMissing, got %v", err)
	}
}

func TestCatalogHandler_Update_Success(t *testing.T) {
	stub := &stubBookService{
		updateFn: func(id string, b *domain.Book, token string) (int, error) {
			if id != testID || token != `W/"4"` || b.BookTitle != "Alpha" {
				t.Fatalf("unexpected args: %s %s %+v", id, token, b)
			}
			return 5, nil
		},
	}
	h := NewCatalogHandler(stub, domain.BookSchema, "/api/books")

	c, rec := bookContext(http.MethodPut, `{"title":"Alpha"}`, map[string]string{
		echo.HeaderContentType: echo.MIMEApplicationJSON,
		headerIfMatch:          `W/"4"`,
	})
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || rec.Header().Get(headerETag) != `"5"` {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Header().Get(headerETag))
	}
}

func TestCatalogHandler_Update_NotFoundIsPrecondition(t *testing.T) {
	stub := &stubBookService{
		updateFn: func(id string, _ *domain.Book, _ string) (int, error) {
			return 0, &domain.NotFoundError{Kind: "book", ID: id}
		},
	}
	h := NewCatalogHandler(stub, domain.BookSchema, "/api/books")

	c, _ := bookContext(http.MethodPut, `{}`, map[string]string{
		echo.HeaderContentType: echo.MIMEApplicationJSON,
		headerIfMatch:          `"0"`,
	})
	var he *echo.HTTPError
	if err := h.Update(c); !errors.As(err, &he) || he.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected 412, got %v", err)
	}
}

func TestCatalogHandler_Create_SetsLocation(t *testing.T) {
	stub := &stubBookService{
		createFn: func(b *domain.Book) (*domain.Book, error) {
			b.ID = testID
			return b, nil
		},
	}
	h := NewCatalogHandler(stub, domain.BookSchema, "/api/books/")

	c, rec := bookContext(http.MethodPost, `{"title":"Alpha"}`, map[string]string{
		echo.HeaderContentType: "application/json; charset=utf-8",
	})
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/api/books/"+testID {
		t.Fatalf("unexpected Location: %q", loc)
	}
}

func TestCatalogHandler_Get_InvalidID(t *testing.T) {
	h := NewCatalogHandler(&stubBookService{}, domain.BookSchema, "/api/books")

	c, _ := bookContext(http.MethodGet, "", nil)
	c.SetParamValues("42")

	var he *echo.HTTPError
	if err := h.Get(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestEtagMatches(t *testing.T) {
	cases := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"3"`, true},
		{`W/"3"`, true},
		{`"1", "3"`, true},
		{"*", true},
		{`"2"`, false},
	}
	for _, tc := range cases {
		if got := etagMatches(tc.header, `"3"`); got != tc.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}
