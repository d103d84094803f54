package cli

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictactoe-go/internal/api/apierr"
	"github.com/mcoot/tictactoe-go/internal/model"
)

type ClientSuite struct {
	suite.Suite
	server *httptest.Server
	client *Client
	auth   string
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /missing", func(w http.ResponseWriter, r *http.Request) {
		apierr.WriteError(w, model.ErrRoomNotFound)
	})
	mux.HandleFunc("GET /private", func(w http.ResponseWriter, r *http.Request) {
		s.auth = r.Header.Get("Authorization")
		apierr.WriteError(w, apierr.NewUnauthorizedError())
	})
	mux.HandleFunc("GET /gateway", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})
	s.server = httptest.NewServer(mux)
	s.client = NewClient(s.server.URL+"/", "tok-1")
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) TestDomainErrorKeepsCodeAndMessage() {
	err := s.client.Get("/missing", nil)

	var apiErr *APIError
	s.Require().True(errors.As(err, &apiErr))
	s.Equal(http.StatusNotFound, apiErr.Status)
	s.Equal(apierr.CodeNotFound, apiErr.Code)
	s.Equal("Room not found (NOT_FOUND)", err.Error())
}

func (s *ClientSuite) TestHasCode() {
	err := s.client.Get("/private", nil)

	s.Equal("Bearer tok-1", s.auth)
	s.True(HasCode(err, apierr.CodeUnauthorized))
	s.False(HasCode(err, apierr.CodeNotFound))
	s.False(HasCode(errors.New("plain"), apierr.CodeUnauthorized))
}

func (s *ClientSuite) TestNonEnvelopeErrorKeepsBody() {
	err := s.client.Get("/gateway", nil)

	s.Require().Error(err)
	s.False(HasCode(err, apierr.CodeUnavailable))
	s.Equal("HTTP 502: upstream unavailable", err.Error())
}

func (s *ClientSuite) TestEmptyErrorBodyUsesStatusText() {
	err := decodeError(http.StatusServiceUnavailable, nil)
	s.Equal("HTTP 503: Service Unavailable", err.Error())
}
