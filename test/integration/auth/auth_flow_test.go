// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

//go:build integration

package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tenantry/tenantry/internal/auth"
	"github.com/tenantry/tenantry/internal/web"
)

// client is a browser-like API client with its own cookie jar.
type client struct {
	http *http.Client
}

func newClient() *client {
	jar, err := cookiejar.New(nil)
	Expect(err).NotTo(HaveOccurred())
	return &client{http: &http.Client{Jar: jar}}
}

func (c *client) post(path string, body any) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
	}
	resp, err := c.http.Post(env.api.URL+path, "application/json", &buf)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

func (c *client) get(path string) *http.Response {
	resp, err := c.http.Get(env.api.URL + path)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

func decode[T any](resp *http.Response) T {
	defer func() { _ = resp.Body.Close() }()
	var v T
	Expect(json.NewDecoder(resp.Body).Decode(&v)).To(Succeed())
	return v
}

func signupPayload(handle, email string) auth.SignupPayload {
	return auth.SignupPayload{
		DisplayName:     "Ada Lovelace",
		TenantName:      "Analytical Engines",
		WorkspaceHandle: handle,
		Email:           email,
		Password:        "correct horse battery",
		ConfirmPassword: "correct horse battery",
	}
}

var _ = Describe("Signup, login and logout over HTTP", func() {
	BeforeEach(func() {
		resetData()
	})

	It("provisions a tenant and signs the admin in", func() {
		c := newClient()

		resp := c.post("/api/v1/auth/signup", signupPayload("analytical", "ada@example.com"))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		profile := decode[auth.Profile](resp)
		Expect(profile.Role).To(Equal(auth.RoleTenantAdmin))
		Expect(profile.WorkspaceHandle).To(Equal("analytical"))
		Expect(profile.AvatarURL).To(HavePrefix("https://avatars.test"))

		me := decode[*auth.Profile](c.get("/api/v1/auth/me"))
		Expect(me).NotTo(BeNil())
		Expect(me.PrincipalID).To(Equal(profile.PrincipalID))
		Expect(me.TenantID).To(Equal(profile.TenantID))
	})

	It("stores only the token hash", func() {
		c := newClient()
		resp := c.post("/api/v1/auth/signup", signupPayload("hashonly", "hash@example.com"))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		_ = resp.Body.Close()

		var token string
		for _, ck := range resp.Cookies() {
			if ck.Name == cookieName {
				token = ck.Value
			}
		}
		Expect(token).NotTo(BeEmpty())

		var plain, hashed int
		Expect(env.pool.QueryRow(env.ctx,
			`SELECT COUNT(*) FROM sessions WHERE token_hash = $1`, token).Scan(&plain)).To(Succeed())
		Expect(env.pool.QueryRow(env.ctx,
			`SELECT COUNT(*) FROM sessions WHERE token_hash = $1`, auth.HashSessionToken(token)).Scan(&hashed)).To(Succeed())
		Expect(plain).To(Equal(0))
		Expect(hashed).To(Equal(1))
	})

	It("rejects a taken handle and a taken email with distinct codes", func() {
		first := newClient().post("/api/v1/auth/signup", signupPayload("taken", "first@example.com"))
		Expect(first.StatusCode).To(Equal(http.StatusCreated))
		_ = first.Body.Close()

		resp := newClient().post("/api/v1/auth/signup", signupPayload("taken", "second@example.com"))
		Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		Expect(decode[web.ErrorBody](resp).Code).To(Equal(auth.CodeHandleTaken))

		resp = newClient().post("/api/v1/auth/signup", signupPayload("other", "FIRST@example.com"))
		Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		Expect(decode[web.ErrorBody](resp).Code).To(Equal(auth.CodeEmailTaken))

		var tenants int
		Expect(env.pool.QueryRow(env.ctx, `SELECT COUNT(*) FROM tenants`).Scan(&tenants)).To(Succeed())
		Expect(tenants).To(Equal(1))
	})

	It("lets exactly one of two racing signups claim a handle", func() {
		var (
			wg       sync.WaitGroup
			statuses = make([]int, 2)
		)
		for i := range statuses {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				email := []string{"racer1@example.com", "racer2@example.com"}[i]
				resp := newClient().post("/api/v1/auth/signup", signupPayload("contested", email))
				_ = resp.Body.Close()
				statuses[i] = resp.StatusCode
			}(i)
		}
		wg.Wait()

		Expect(statuses).To(ConsistOf(http.StatusCreated, http.StatusConflict))
	})

	It("logs in with the right password and not with the wrong one", func() {
		resp := newClient().post("/api/v1/auth/signup", signupPayload("logins", "login@example.com"))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		_ = resp.Body.Close()

		c := newClient()
		resp = c.post("/api/v1/auth/login", auth.LoginPayload{Email: "login@example.com", Password: "nope nope nope"})
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		wrong := decode[web.ErrorBody](resp)

		resp = c.post("/api/v1/auth/login", auth.LoginPayload{Email: "ghost@example.com", Password: "nope nope nope"})
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		unknown := decode[web.ErrorBody](resp)
		Expect(unknown.Code).To(Equal(wrong.Code))
		Expect(unknown.Message).To(Equal(wrong.Message))

		resp = c.post("/api/v1/auth/login", auth.LoginPayload{Email: "login@example.com", Password: "correct horse battery"})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		_ = resp.Body.Close()
		Expect(decode[*auth.Profile](c.get("/api/v1/auth/me"))).NotTo(BeNil())
	})

	It("signs out only the session that logged out", func() {
		a := newClient()
		resp := a.post("/api/v1/auth/signup", signupPayload("multi", "multi@example.com"))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		_ = resp.Body.Close()

		b := newClient()
		resp = b.post("/api/v1/auth/login", auth.LoginPayload{Email: "multi@example.com", Password: "correct horse battery"})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		_ = resp.Body.Close()

		resp = a.post("/api/v1/auth/logout", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		_ = resp.Body.Close()

		Expect(decode[*auth.Profile](a.get("/api/v1/auth/me"))).To(BeNil())
		Expect(decode[*auth.Profile](b.get("/api/v1/auth/me"))).NotTo(BeNil())

		resp = a.post("/api/v1/auth/logout", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
		_ = resp.Body.Close()
	})

	It("answers availability checks", func() {
		resp := newClient().post("/api/v1/auth/signup", signupPayload("claimed", "claimed@example.com"))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		_ = resp.Body.Close()

		c := newClient()
		Expect(decode[web.AvailabilityResponse](c.get("/api/v1/availability/handle/claimed")).Available).To(BeFalse())
		Expect(decode[web.AvailabilityResponse](c.get("/api/v1/availability/handle/unclaimed")).Available).To(BeTrue())
		Expect(decode[web.AvailabilityResponse](c.get("/api/v1/availability/handle/admin")).Available).To(BeFalse())
		Expect(decode[web.AvailabilityResponse](c.get("/api/v1/availability/email?email=Claimed@Example.com")).Available).To(BeFalse())
		Expect(decode[web.AvailabilityResponse](c.get("/api/v1/availability/email?email=fresh@example.com")).Available).To(BeTrue())
	})

	It("rejects invalid signups without writing anything", func() {
		payload := signupPayload("invalid", "invalid@example.com")
		payload.ConfirmPassword = "something else"

		resp := newClient().post("/api/v1/auth/signup", payload)
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(decode[web.ErrorBody](resp).Code).To(Equal(auth.CodePasswordMismatch))

		var tenants int
		Expect(env.pool.QueryRow(env.ctx, `SELECT COUNT(*) FROM tenants`).Scan(&tenants)).To(Succeed())
		Expect(tenants).To(Equal(0))
	})
})
