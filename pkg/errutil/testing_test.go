// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/tenantry/tenantry/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	// Should not fail
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("user_id", "123").Errorf("test error")
	// Should not fail
	errutil.AssertErrorContext(t, err, "user_id", "123")
}

func TestAssertCorrelationID_ReturnsID(t *testing.T) {
	err := &publicError{id: "err-abc"}
	assert.Equal(t, "err-abc", errutil.AssertCorrelationID(t, err))
}
