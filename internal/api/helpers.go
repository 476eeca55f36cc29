package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/stacklend/stacklend-server/internal/http/response"
)

// decodeAndValidate reads the request body into dst and runs struct
// validation. It writes the error response itself and reports whether
// the handler should continue.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return false
	}
	if err := s.validator.Validate(dst); err != nil {
		response.HandleError(w, err, s.logger)
		return false
	}
	return true
}
