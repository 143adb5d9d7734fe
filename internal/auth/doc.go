// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

// Package auth provides tenant provisioning, credential verification and
// session management for Tenantry.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewTenant - creates a Tenant with a validated handle and owner
//   - NewPrincipal - creates a Principal with a validated email and role
//   - NewSession - creates a Session carrying a profile snapshot
//
// Repository implementations receive pre-validated types from these constructors.
//
// # Services
//
//   - Service - signup, login, current user, logout and availability checks
//   - Provisioner - atomic creation of a tenant and its first admin
//   - SessionManager - issue, resolve and revoke opaque session tokens
//   - Sweeper - periodic removal of expired sessions
//
// # Errors
//
// Every error returned by Service is an *Error whose Kind is one of a closed
// set. Messages are safe to show to untrusted callers; causes are for logs.
package auth
