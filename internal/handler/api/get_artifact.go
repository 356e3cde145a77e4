package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/lessonloop/ingest-ms-go/internal/api_context"
	"github.com/lessonloop/ingest-ms-go/internal/usecase/artifact"
)

func GetArtifactHandler(svc artifact.Getter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.ArtifactIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		out, err := svc.GetArtifact(r.Context(), artifact.GetArtifactInput{ID: id})
		if err != nil {
			if errors.Is(err, artifact.ErrArtifactNotFound) {
				WriteError(w, http.StatusNotFound, "Artifact not found", nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not get artifact details", err)
			return
		}

		RespondJSON(w, http.StatusOK, out)
		log.Printf("✅  Successfully returned details for artifact #%s", id)
	}
}
