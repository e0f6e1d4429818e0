// Package railsim is an in-process payment processor that speaks the rail protocol.
// It settles transfers immediately according to a Policy.
package railsim

import (
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"

	"github.com/Dan9191/advance-service/internal/integrations/rail"
	"github.com/Dan9191/advance-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Policy decides how submitted transfers are treated
type Policy struct {
	// RejectAbove refuses transfers larger than this amount without assigning an id. Zero disables it.
	RejectAbove decimal.Decimal
	// FailAccounts settles as failed any transfer touching one of these accounts.
	FailAccounts map[int64]bool
	// FailRate is the probability that any other transfer settles as failed.
	FailRate float64
}

// Server simulates the payment processor
type Server struct {
	secret []byte
	log    *logrus.Logger
	rnd    func() float64

	mu     sync.Mutex
	policy Policy
	nextID int64
	report models.Report
}

// NewServer creates a simulator verifying tokens signed with secret
func NewServer(secret string, policy Policy, log *logrus.Logger) *Server {
	return &Server{
		secret: []byte(secret),
		log:    log,
		rnd:    rand.Float64,
		policy: policy,
		report: models.Report{},
	}
}

// SetPolicy replaces the settlement policy
func (s *Server) SetPolicy(p Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
}

// Router returns the HTTP routes of the simulator
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.authenticate)
	r.HandleFunc("/transactions", s.execute).Methods("POST")
	r.HandleFunc("/report", s.downloadReport).Methods("GET")
	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		_, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(rail.Issuer))
		if err != nil {
			s.log.WithError(err).Warn("Rejected request with invalid token")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	transfer, err := rail.DecodeTransfer(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	railID, status := s.settle(transfer)
	body, err := rail.EncodeTransferResult(railID)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	s.log.WithFields(logrus.Fields{
		"request_id": r.Header.Get("X-Request-ID"),
		"rail_id":    railID,
		"status":     status,
		"src":        transfer.Source,
		"dst":        transfer.Destination,
		"amount":     transfer.Amount.String(),
	}).Info("Transfer processed")
	writeXML(w, body)
}

// settle assigns an id and an outcome. A zero id means the transfer was refused.
func (s *Server) settle(t rail.Transfer) (int64, models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.policy.RejectAbove.IsZero() && t.Amount.GreaterThan(s.policy.RejectAbove) {
		return 0, models.StatusFail
	}

	s.nextID++
	status := models.StatusSuccess
	switch {
	case s.policy.FailAccounts[t.Source], s.policy.FailAccounts[t.Destination]:
		status = models.StatusFail
	case s.policy.FailRate > 0 && s.rnd() < s.policy.FailRate:
		status = models.StatusFail
	}
	s.report[s.nextID] = status
	return s.nextID, status
}

func (s *Server) downloadReport(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snapshot := make(models.Report, len(s.report))
	for id, status := range s.report {
		snapshot[id] = status
	}
	s.mu.Unlock()

	body, err := rail.EncodeReport(snapshot)
	if err != nil {
		http.Error(w, "failed to encode report", http.StatusInternalServerError)
		return
	}
	writeXML(w, body)
}

func writeXML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body) // nolint:errcheck
}

// ErrBadPolicy is returned by NewPolicy for out of range settings
var ErrBadPolicy = errors.New("invalid simulator policy")

// NewPolicy builds a policy from configuration values
func NewPolicy(failRate float64, failAccounts []int64, rejectAbove decimal.Decimal) (Policy, error) {
	if failRate < 0 || failRate > 1 {
		return Policy{}, ErrBadPolicy
	}
	p := Policy{FailRate: failRate, RejectAbove: rejectAbove, FailAccounts: make(map[int64]bool, len(failAccounts))}
	for _, id := range failAccounts {
		p.FailAccounts[id] = true
	}
	return p, nil
}
