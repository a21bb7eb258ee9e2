package schema

import (
	"fmt"
	"strings"
)

// Role names a semantic column category resolved from header names.
type Role string

const (
	RoleProduct  Role = "product"
	RoleCategory Role = "category"
	RolePrice    Role = "price"
	RoleQuantity Role = "quantity"
	RoleDateSold Role = "date_sold"
)

// AllRoles lists every role in resolution order.
var AllRoles = []Role{RoleProduct, RoleCategory, RolePrice, RoleQuantity, RoleDateSold}

// ParseRole maps a config key onto a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("schema: unknown role %q", s)
}

// Candidates maps each role to its ordered candidate substrings.
type Candidates map[Role][]string

// DefaultCandidates returns a fresh copy of the built-in candidate lists.
func DefaultCandidates() Candidates {
	return Candidates{
		RoleProduct:  {"product_name", "product", "name"},
		RoleCategory: {"category", "cat"},
		RolePrice:    {"price", "unit_price", "unitprice", "sale_price", "amount"},
		RoleQuantity: {"quantity", "qty", "units_sold", "units", "count"},
		RoleDateSold: {"date_sold", "sale_date", "date"},
	}
}

// Merge returns c with the lists in override replacing c's lists role by
// role. Empty override lists are ignored.
func (c Candidates) Merge(override Candidates) Candidates {
	out := make(Candidates, len(c))
	for r, list := range c {
		out[r] = append([]string(nil), list...)
	}
	for r, list := range override {
		if len(list) == 0 {
			continue
		}
		out[r] = append([]string(nil), list...)
	}
	return out
}

// Resolve returns the first column (in column order) that contains any of
// the candidates as a substring, checking candidates in order for each
// column. Matching is case-sensitive; columns are expected to be normalized.
func Resolve(columns, candidates []string) (string, bool) {
	for _, col := range columns {
		for _, cand := range candidates {
			if cand != "" && strings.Contains(col, cand) {
				return col, true
			}
		}
	}
	return "", false
}

// Roles is the immutable result of one resolution pass.
type Roles struct {
	cols map[Role]string
}

// ResolveRoles runs Resolve once per role.
func ResolveRoles(columns []string, c Candidates) Roles {
	out := Roles{cols: make(map[Role]string, len(AllRoles))}
	for _, r := range AllRoles {
		if col, ok := Resolve(columns, c[r]); ok {
			out.cols[r] = col
		}
	}
	return out
}

// Column returns the column resolved for r.
func (r Roles) Column(role Role) (string, bool) {
	col, ok := r.cols[role]
	return col, ok
}

// Resolved lists the roles that found a column, in AllRoles order.
func (r Roles) Resolved() []Role {
	var out []Role
	for _, role := range AllRoles {
		if _, ok := r.cols[role]; ok {
			out = append(out, role)
		}
	}
	return out
}

// Missing lists the roles that found no column, in AllRoles order.
func (r Roles) Missing() []Role {
	var out []Role
	for _, role := range AllRoles {
		if _, ok := r.cols[role]; !ok {
			out = append(out, role)
		}
	}
	return out
}

// Map returns a copy of the mapping keyed by role name, for logs and
// summaries.
func (r Roles) Map() map[string]string {
	out := make(map[string]string, len(r.cols))
	for _, role := range r.Resolved() {
		out[string(role)] = r.cols[role]
	}
	return out
}
