// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantry/tenantry/internal/auth"
)

func TestAuthService_LogsNeverContainSecrets(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mem := newMemStore()
	svc, err := auth.NewAuthServiceWithLogger(mem.store(), newFastHasher(t), auth.Options{}, logger)
	require.NoError(t, err)

	res, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	_, err = svc.Login(ctx, auth.LoginPayload{Email: "a@b.com", Password: "wrong-password"})
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "tenant provisioned")
	assert.NotContains(t, out, "longenough1")
	assert.NotContains(t, out, "wrong-password")
	assert.NotContains(t, out, res.Token)
}

func TestAuthService_LogsPersistenceFailuresWithCorrelationID(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	mem := newMemStore()
	mem.failSessionCreate = errors.New("connection reset")
	svc, err := auth.NewAuthServiceWithLogger(mem.store(), newFastHasher(t), auth.Options{}, logger)
	require.NoError(t, err)

	_, err = svc.Signup(ctx, validSignup())
	pub := requireKind(t, err, auth.KindPersistence, auth.CodeUnavailable)

	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "signup failed", entry["msg"])
	assert.Equal(t, pub.ID, entry["error_id"])
	assert.Equal(t, "SESSION_CREATE_FAILED", entry["code"])
}
