package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/middleware"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type errorBody struct {
	Error string `json:"error"`
}

func wrapError(err error) errorBody {
	return errorBody{Error: err.Error()}
}

func requestLog(log *logrus.Logger, r *http.Request) *logrus.Entry {
	return log.WithField("request_id", middleware.RequestID(r.Context()))
}

func sendJSON(w http.ResponseWriter, status int, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	return err
}

func sendJSONOrLog(w http.ResponseWriter, log *logrus.Entry, status int, v any) {
	if err := sendJSON(w, status, v); err != nil {
		log.WithError(err).Error("unable to send response")
	}
}

func sendErrorOrLog(w http.ResponseWriter, log *logrus.Entry, status int, err error) {
	sendJSONOrLog(w, log, status, wrapError(err))
}

// internalError logs err with msg and answers 500 without leaking details.
func internalError(w http.ResponseWriter, log *logrus.Entry, msg string, err error) {
	log.WithError(err).Error(msg)
	w.WriteHeader(http.StatusInternalServerError)
}
