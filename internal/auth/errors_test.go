// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package auth_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantry/tenantry/internal/auth"
	"github.com/tenantry/tenantry/pkg/errutil"
)

func TestKind_MethodTable(t *testing.T) {
	tests := []struct {
		kind      auth.Kind
		name      string
		severity  auth.Severity
		retryable bool
	}{
		{auth.KindInternal, "internal", auth.SeverityError, false},
		{auth.KindValidation, "validation", auth.SeverityWarning, false},
		{auth.KindUnauthorized, "unauthorized", auth.SeverityWarning, false},
		{auth.KindConflict, "conflict", auth.SeverityWarning, false},
		{auth.KindPersistence, "persistence", auth.SeverityError, true},
		{auth.KindNotFound, "not_found", auth.SeverityWarning, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.severity, tt.kind.Severity())
			assert.Equal(t, tt.retryable, tt.kind.Retryable())
			assert.NotEmpty(t, tt.kind.Title())
		})
	}

	t.Run("unknown kind falls back to internal", func(t *testing.T) {
		k := auth.Kind(200)
		assert.Equal(t, "internal", k.String())
		assert.Equal(t, auth.KindInternal.Title(), k.Title())
		assert.Equal(t, auth.SeverityError, k.Severity())
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, auth.KindInternal, auth.KindOf(errors.New("plain")))

	err := auth.ValidateEmail("nope")
	assert.Equal(t, auth.KindValidation, auth.KindOf(err))
}

func TestError_CorrelationIDIsPerInstance(t *testing.T) {
	err1 := auth.ValidateEmail("nope")
	err2 := auth.ValidateEmail("nope")

	id1 := errutil.AssertCorrelationID(t, err1)
	id2 := errutil.AssertCorrelationID(t, err2)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestError_PresentationMethods(t *testing.T) {
	err := auth.ValidateEmail("nope")
	var pub *auth.Error
	require.ErrorAs(t, err, &pub)

	assert.Equal(t, "Data Invalid", pub.Title())
	assert.Equal(t, auth.SeverityWarning, pub.Severity())
	assert.Equal(t, pub.ID, pub.CorrelationID())
	assert.Nil(t, pub.Unwrap())
}

func TestAsError(t *testing.T) {
	pub := auth.NewError(auth.KindConflict, auth.CodeHandleTaken, "taken", nil)
	assert.Same(t, pub, auth.AsError(fmt.Errorf("wrapped: %w", pub)))

	raw := errors.New("socket closed")
	got := auth.AsError(raw)
	assert.Equal(t, auth.KindInternal, got.Kind)
	assert.Equal(t, auth.CodeInternal, got.Code)
	assert.NotContains(t, got.Error(), "socket")
	assert.ErrorIs(t, got, raw)
}
