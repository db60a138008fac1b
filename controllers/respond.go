package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ecommerce-backend/middleware"
	"ecommerce-backend/services"
	"ecommerce-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string                `json:"message"`
	Errors  []services.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError converts a service error into the JSON envelope, mapping its
// kind onto an HTTP status. Anything unrecognized becomes a 500.
func writeError(w http.ResponseWriter, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Printf("unexpected error: %v", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Unexpected error"})
		return
	}

	status := statusForKind(svcErr.Kind)
	if svcErr.Kind == services.KindInternal {
		log.Printf("%s: %v", svcErr.Message, svcErr.Err)
	}
	if len(svcErr.Fields) > 0 {
		writeJSON(w, status, validationResponse{Message: svcErr.Message, Errors: svcErr.Fields})
		return
	}
	writeJSON(w, status, messageResponse{Message: svcErr.Message})
}

// requestActor pulls the verified claims out of the request context and
// parses the embedded user id. A missing or corrupt identity writes a 401
// and returns ok=false.
func requestActor(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, *utils.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return primitive.NilObjectID, nil, false
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return primitive.NilObjectID, nil, false
	}
	return id, claims, true
}

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
