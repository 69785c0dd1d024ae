package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Trigger interface {
	Trigger(brand string) error
}

type Healthchecker struct {
	Server http.Server
}

func NewHealthchecker(healthcheckPort int, trigger Trigger) Healthchecker {
	return Healthchecker{
		Server: http.Server{
			Addr:              fmt.Sprintf("0.0.0.0:%d", healthcheckPort),
			Handler:           newRouter(trigger),
			ReadHeaderTimeout: 15 * time.Second,
		},
	}
}

func newRouter(trigger Trigger) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/", handleHealthcheck()).Methods(http.MethodGet)
	router.Handle("/health", handleHealthcheck()).Methods(http.MethodGet)
	router.Handle("/trigger/{brand}", handleTrigger(trigger)).Methods(http.MethodPost)
	return router
}

func handleHealthcheck() http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			log.Debug("received healthcheck request")
			// This will have a status of 200
			fmt.Fprintf(w, "all good in the hood")
		},
	)
}

func handleTrigger(trigger Trigger) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			brand := mux.Vars(r)["brand"]
			logger := log.WithField("brand", brand)

			status := http.StatusAccepted
			body := map[string]string{"brand": brand, "status": "queued"}
			if err := trigger.Trigger(brand); err != nil {
				status = http.StatusInternalServerError
				if errors.Is(err, ErrUnknownBrand) {
					status = http.StatusNotFound
				}
				body = map[string]string{"brand": brand, "error": err.Error()}
				logger.Warnf("trigger rejected: %v", err)
			} else {
				logger.Info("run triggered")
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if err := json.NewEncoder(w).Encode(body); err != nil {
				logger.Errorf("error writing trigger response: %v", err)
			}
		},
	)
}
