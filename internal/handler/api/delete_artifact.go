package api

import (
	"log"
	"net/http"

	"github.com/lessonloop/ingest-ms-go/internal/api_context"
	"github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
)

func DeleteArtifactHandler(svc artifact.Deleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.ArtifactIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		if err := svc.DeleteArtifact(r.Context(), artifact.DeleteArtifactInput{ID: id}); err != nil {
			WriteError(w, http.StatusInternalServerError, "Could not delete artifact", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
		log.Printf("✅  Successfully deleted artifact #%s", id)
	}
}
