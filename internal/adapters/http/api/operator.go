package api

import (
	"net/http"
	"strings"

	"github.com/okian/hireflow/internal/domain/model"
)

// Headers identifying the operator behind a request.
const (
	headerEmployeeID    = "X-Employee-ID"
	headerCompanyDomain = "X-Company-Domain"
)

// operatorFrom resolves the operator once per request. A missing employee id
// is left blank for the service to reject.
func operatorFrom(r *http.Request) model.Operator {
	return model.Operator{
		EmployeeID:    strings.TrimSpace(r.Header.Get(headerEmployeeID)),
		CompanyDomain: strings.TrimSpace(r.Header.Get(headerCompanyDomain)),
	}
}
