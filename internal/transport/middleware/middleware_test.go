package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet/pkg/logger"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("CORS", func() {
	It("echoes an allowed origin", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://a.example")
		rec := httptest.NewRecorder()

		CORS("https://a.example, https://b.example")(ok).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://a.example"))
		Expect(rec.Header().Get("Access-Control-Expose-Headers")).To(ContainSubstring("Content-Disposition"))
	})

	It("ignores other origins", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		CORS("https://a.example")(ok).ServeHTTP(rec, req)

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("short-circuits preflight requests", func() {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://x.example")
		req.Header.Set("Access-Control-Request-Method", "DELETE")
		rec := httptest.NewRecorder()

		CORS("*")(ok).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("X-Confirm"))
	})
})

var _ = Describe("RequestID", func() {
	It("reuses the caller's trace id and tags the request logger", func() {
		var hasLogger bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasLogger = logger.Lookup(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-1")
		rec := httptest.NewRecorder()

		RequestID(next).ServeHTTP(rec, req)

		Expect(rec.Header().Get(TraceHeader)).To(Equal("trace-1"))
		Expect(hasLogger).To(BeTrue())
	})

	It("generates one when absent", func() {
		rec := httptest.NewRecorder()
		RequestID(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(rec.Header().Get(TraceHeader)).To(HaveLen(36))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("answers 500 with the error envelope", func() {
		boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
		rec := httptest.NewRecorder()

		RecoveryMiddleware(logger.Discard())(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).To(ContainSubstring(`"code":"INTERNAL_ERROR"`))
		Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	var (
		buf bytes.Buffer
		lg  *slog.Logger
	)

	BeforeEach(func() {
		buf.Reset()
		lg = slog.New(slog.NewJSONHandler(&buf, nil))
	})

	It("masks credentials in request bodies and headers", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"a@lxgcapital.com","password":"hunter22"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer abc")

		var seen string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := new(bytes.Buffer)
			_, _ = b.ReadFrom(r.Body)
			seen = b.String()
		})

		LoggingMiddleware(lg)(next).ServeHTTP(httptest.NewRecorder(), req)

		Expect(seen).To(ContainSubstring("hunter22"))
		Expect(buf.String()).NotTo(ContainSubstring("hunter22"))
		Expect(buf.String()).NotTo(ContainSubstring("Bearer abc"))
		Expect(buf.String()).To(ContainSubstring("a@lxgcapital.com"))
	})

	It("logs CSV responses by size only", func() {
		csv := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			_, _ = w.Write([]byte(`"Semana","Usuario"`))
		})

		LoggingMiddleware(lg)(csv).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(buf.String()).NotTo(ContainSubstring("Semana"))
		Expect(buf.String()).To(ContainSubstring(`"response_size":18`))
	})

	It("filters nested fields", func() {
		out := filterSensitiveBody([]byte(`{"user":{"name":"Ana"},"access_token":"t","items":[{"password":"p"}]}`))
		Expect(out).To(ContainSubstring(`"name":"Ana"`))
		Expect(out).NotTo(ContainSubstring(`"t"`))
		Expect(out).NotTo(ContainSubstring(`"p"`))
	})
})

var _ = Describe("OpenAPIValidator", func() {
	const doc = `
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /things:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              properties:
                n: {type: number}
      responses:
        '200': {description: ok}
`
	var v *OpenAPIValidator

	BeforeEach(func() {
		var err error
		v, err = NewOpenAPIValidator([]byte(doc), logger.Discard())
		Expect(err).NotTo(HaveOccurred())
	})

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		v.Middleware(ok).ServeHTTP(rec, req)
		return rec
	}

	It("passes valid requests", func() {
		Expect(post("/things", `{"n": 1}`).Code).To(Equal(http.StatusOK))
	})

	It("rejects type mismatches with field details", func() {
		rec := post("/things", `{"n": "one"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(`"field":"body"`))
	})

	It("lets undocumented paths through", func() {
		Expect(post("/elsewhere", `nonsense`).Code).To(Equal(http.StatusOK))
	})

	It("refuses a broken document", func() {
		_, err := NewOpenAPIValidator([]byte("openapi: ["), logger.Discard())
		Expect(err).To(HaveOccurred())
	})
})
