package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskengine/internal/config"
	"github.com/kubev2v/taskengine/internal/server"
	"github.com/kubev2v/taskengine/internal/server/middlewares"
)

var _ = Describe("Server", func() {
	var cfg *config.Configuration

	register := func(router *gin.RouterGroup) {
		router.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(middlewares.SubjectKey))
		})
		router.GET("/panic", func(c *gin.Context) {
			panic("boom")
		})
	}

	get := func(srv *server.Server, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		cfg = config.NewConfigurationWithDefaults()
	})

	It("should serve the api without auth by default", func() {
		srv, err := server.NewServer(cfg, register)
		Expect(err).NotTo(HaveOccurred())

		Expect(get(srv, "/api/v1/ping", "").Code).To(Equal(http.StatusOK))
		Expect(get(srv, "/health", "").Code).To(Equal(http.StatusOK))
		Expect(get(srv, "/nope", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should recover from a panicking handler", func() {
		srv, err := server.NewServer(cfg, register)
		Expect(err).NotTo(HaveOccurred())

		Expect(get(srv, "/api/v1/panic", "").Code).To(Equal(http.StatusInternalServerError))
	})

	It("should refuse to start with auth and no secret", func() {
		cfg.Auth.Enabled = true

		_, err := server.NewServer(cfg, register)
		Expect(err).To(HaveOccurred())
	})

	Context("with authentication", func() {
		var (
			srv    *server.Server
			secret = []byte("s3cr3t")
		)

		BeforeEach(func() {
			cfg.Auth.Enabled = true
			cfg.Auth.Secret = string(secret)

			var err error
			srv, err = server.NewServer(cfg, register)
			Expect(err).NotTo(HaveOccurred())
		})

		// Given a server with authentication enabled
		// When a request carries a token signed with the configured secret
		// Then it goes through and the subject is available to the handler
		It("should accept a valid token", func() {
			// Arrange
			token, err := middlewares.NewToken(secret, "alice", time.Minute)
			Expect(err).NotTo(HaveOccurred())

			// Act
			w := get(srv, "/api/v1/ping", token)

			// Assert
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("alice"))
		})

		It("should reject a missing token", func() {
			Expect(get(srv, "/api/v1/ping", "").Code).To(Equal(http.StatusUnauthorized))
		})

		It("should keep health open", func() {
			Expect(get(srv, "/health", "").Code).To(Equal(http.StatusOK))
		})

		It("should reject a token signed with another secret", func() {
			token, err := middlewares.NewToken([]byte("other"), "mallory", time.Minute)
			Expect(err).NotTo(HaveOccurred())

			Expect(get(srv, "/api/v1/ping", token).Code).To(Equal(http.StatusUnauthorized))
		})

		It("should reject an expired token", func() {
			token, err := middlewares.NewToken(secret, "alice", -time.Minute)
			Expect(err).NotTo(HaveOccurred())

			w := get(srv, "/api/v1/ping", token)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("expired"))
		})

		It("should reject a token without expiry", func() {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).SignedString(secret)
			Expect(err).NotTo(HaveOccurred())

			Expect(get(srv, "/api/v1/ping", token).Code).To(Equal(http.StatusUnauthorized))
		})
	})

	It("should stop a running server", func() {
		cfg.Server.HTTPPort = 18089
		srv, err := server.NewServer(cfg, register)
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() { done <- srv.Start(context.Background()) }()

		Eventually(func() error {
			resp, err := http.Get("http://127.0.0.1:18089/health")
			if err == nil {
				resp.Body.Close()
			}
			return err
		}).Should(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(srv.Stop(ctx)).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
	})
})
