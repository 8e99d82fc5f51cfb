// Package remote implements driven.Backend and driven.WorkspaceStore over the
// remote store's HTTP API.
//
// Every request carries "Authorization: Bearer <token>" injected by an
// oauth2.Transport. A request is never sent without a token: the client checks
// the TokenProvider first and returns domain.ErrUnauthenticated instead.
//
// Records cross the wire in the snake_case shapes defined in records.go. The
// translate.go functions convert between those shapes and domain entities:
//
//   - camelCase fields map to snake_case and back
//   - mode "extraction" travels as "datapoint_extraction", "segmentation" as "text_segmentation"
//   - storage kind "remote" travels as "cloud"
//   - optional fields that are unset are omitted, never sent as "" or 0
//   - server metadata (user_id, created_at, updated_at) is dropped on the way in
//
// HTTP and transport errors are converted to *domain.Failure; raw transport
// errors never leave this package.
package remote
