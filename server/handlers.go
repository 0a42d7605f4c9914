package server

import (
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gloworm-vision/colorlight/hardware"
	"github.com/sirupsen/logrus"
)

//go:embed templates/form.html
var formHTML string

var formTemplate = template.Must(template.New("form").Parse(formHTML))

func (s *Server) getColor(res http.ResponseWriter, req *http.Request) {
	respond(res, s.State.Get(), http.StatusOK)
}

func (s *Server) putColor(res http.ResponseWriter, req *http.Request) {
	c, status, err := decodeColor(http.MaxBytesReader(res, req.Body, maxBodyBytes))
	if err != nil {
		s.Logger.WithError(err).Debug("rejected color request")
		respond(res, malformedRequest, status)
		return
	}

	if err := s.State.Set(c); err != nil {
		s.Logger.WithError(err).WithField("color", c).Error("unable to apply color")
		respond(res, err, http.StatusInternalServerError)
		return
	}

	s.Logger.WithField("color", c).Debug("color set over http")
	respond(res, nil, http.StatusNoContent)
}

func (s *Server) getHardware(res http.ResponseWriter, req *http.Request) {
	config, err := s.Store.HardwareConfig()
	if err != nil {
		respond(res, err, http.StatusInternalServerError)
		return
	}

	respond(res, config, http.StatusOK)
}

// putHardware stores a hardware config. Pins are claimed at startup so it
// takes effect on the next start.
func (s *Server) putHardware(res http.ResponseWriter, req *http.Request) {
	var config hardware.Config
	if status, err := decodeJSON(http.MaxBytesReader(res, req.Body, maxBodyBytes), &config); err != nil {
		s.Logger.WithError(err).Debug("rejected hardware request")
		respond(res, malformedRequest, status)
		return
	}

	if err := config.Validate(); err != nil {
		respond(res, err, http.StatusUnprocessableEntity)
		return
	}

	if err := s.Store.PutHardwareConfig(config); err != nil {
		respond(res, err, http.StatusInternalServerError)
		return
	}

	s.Logger.WithField("config", config).Info("stored hardware config")
	respond(res, nil, http.StatusNoContent)
}

type formData struct {
	Hex string
}

func (s *Server) form(res http.ResponseWriter, req *http.Request) {
	c := s.State.Get()

	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := formTemplate.Execute(res, formData{Hex: fmt.Sprintf("#%02x%02x%02x", c.Red, c.Green, c.Blue)})
	if err != nil {
		s.Logger.WithError(err).Error("unable to render form")
	}
}

func (s *Server) notFound(res http.ResponseWriter, req *http.Request) {
	s.Logger.WithFields(logrus.Fields{"method": req.Method, "path": req.URL.Path}).Debug("no route")
	respond(res, resourceNotFound, http.StatusNotFound)
}

func (s *Server) panicked(res http.ResponseWriter, req *http.Request, v interface{}) {
	s.Logger.WithFields(logrus.Fields{"method": req.Method, "path": req.URL.Path, "panic": v}).Error("handler panicked")
	respond(res, fmt.Errorf("internal server error"), http.StatusInternalServerError)
}
