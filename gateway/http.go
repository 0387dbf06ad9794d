package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fenwick-industrial/modbus-gateway/catalog"
	"github.com/fenwick-industrial/modbus-gateway/common"
	"github.com/fenwick-industrial/modbus-gateway/logging"
)

func noopValueLogger() common.LoggerInterface {
	return logging.NewNoopLogger()
}

// AdminServer exposes a read-only view of a catalog's compiled command
// plan. It never touches the wire: every handler recompiles the plan
// in-process and serializes it, keeping the transport boundary (spec §1
// Non-goals) intact.
type AdminServer struct {
	cat    catalog.Catalog
	values ValueSource
	router *mux.Router
}

// NewAdminServer builds the router for cat. values supplies current
// values for writable tags when /plan/write is requested.
func NewAdminServer(cat catalog.Catalog, values ValueSource) *AdminServer {
	s := &AdminServer{cat: cat, values: values, router: mux.NewRouter()}
	s.router.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	s.router.HandleFunc("/plan/read", s.handlePlanRead).Methods(http.MethodGet)
	s.router.HandleFunc("/plan/write", s.handlePlanWrite).Methods(http.MethodGet)
	return s
}

func (s *AdminServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *AdminServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cat)
}

func (s *AdminServer) handlePlanRead(w http.ResponseWriter, r *http.Request) {
	plan, err := Compile(s.cat, s.values, noopValueLogger())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, plan.ReadCmds)
}

func (s *AdminServer) handlePlanWrite(w http.ResponseWriter, r *http.Request) {
	plan, err := Compile(s.cat, s.values, noopValueLogger())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, plan.WriteCmds)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
