// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package mocks

import "context"

// PassthroughTransactor runs fn directly with the caller's context.
// It records how many units of work were started and how many failed.
type PassthroughTransactor struct {
	Calls    int
	Failures int
}

// InTransaction calls fn without any real transaction.
func (p *PassthroughTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.Calls++
	if err := fn(ctx); err != nil {
		p.Failures++
		return err
	}
	return nil
}
