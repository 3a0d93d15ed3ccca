package cmd

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/scoreflow/config"
	"github.com/jsphweid/scoreflow/merge"
	"github.com/jsphweid/scoreflow/model"
	"github.com/jsphweid/scoreflow/musicxml"
	"github.com/jsphweid/scoreflow/performance"
	"github.com/jsphweid/scoreflow/score"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves export and pedal endpoints",
	Long: `Serves POST /musicxml, which turns a JSON score into MusicXML, and
POST /pedal, which computes sound-off times for a performance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("listening", "addr", cfg.Serve.Addr)
		return http.ListenAndServe(cfg.Serve.Addr, NewRouter(cfg))
	},
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(ctx).Error("could not write response", "err", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	writeJSON(ctx, w, status, model.ErrorResponse{Error: err.Error()})
}

// HandleMusicXML answers a JSON score with its MusicXML export.
func HandleMusicXML(opts musicxml.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := uuid.New().String()
		ctx := log.WithContext(r.Context(), logger.With("request_id", requestId))

		parts, err := score.DecodeJSON(r.Body)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, err)
			return
		}
		doc, err := musicxml.Build(ctx, parts, opts)
		if err != nil {
			writeError(ctx, w, http.StatusUnprocessableEntity, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.recordare.musicxml+xml")
		w.Header().Set("X-Request-Id", requestId)
		if _, err := doc.WriteTo(w); err != nil {
			log.FromContext(ctx).Error("could not write response", "err", err)
		}
	}
}

// HandlePedal answers a performance with its sound-off table.
func HandlePedal(defaultThreshold int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := log.WithContext(r.Context(), logger)
		var input model.PedalRequestBody
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(ctx, w, http.StatusBadRequest, err)
			return
		}
		threshold := defaultThreshold
		if input.Threshold != nil {
			threshold = *input.Threshold
		}

		res := model.PedalResponse{
			RequestId: uuid.New().String(),
			Threshold: threshold,
			SoundOff:  performance.AdjustOffsetsWithSustain(input.Notes, input.Controls, threshold),
		}
		logger.Debug("pedal", "request_id", res.RequestId, "notes", len(input.Notes), "controls", len(input.Controls))
		writeJSON(ctx, w, http.StatusOK, res)
	}
}

func NewRouter(c config.Config) http.Handler {
	opts := musicxml.Options{Workers: c.Export.Workers}
	opts.Merge.AnyAnchor = c.Export.AnyAnchor
	if c.Export.AttributesFirst {
		opts.Merge.TieBreak = merge.AttributesFirst
	}
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/musicxml", HandleMusicXML(opts)).Methods("POST")
	router.HandleFunc("/pedal", HandlePedal(c.PedalThreshold)).Methods("POST")

	origins := c.Serve.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodPost},
	}).Handler(router)
}
