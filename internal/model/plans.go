// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// DefaultPlanID is the plan charged when no plan was selected.
const DefaultPlanID = "basico"

// =============================================================================
// PLAN TYPE
// =============================================================================

// Plan is a subscription plan the assistant can sell.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	PriceCents  int      `json:"price_cents"`
	Benefits    []string `json:"benefits"`
	Description string   `json:"description"`
	Methods     []string `json:"methods"`
}

// Price returns the price formatted in reais, e.g. "R$29,99".
func (p Plan) Price() string {
	return fmt.Sprintf("R$%d,%02d", p.PriceCents/100, p.PriceCents%100)
}

// =============================================================================
// PLAN CATALOG
// =============================================================================

// Plans is the catalog of plans, keyed by plan id.
var Plans = map[string]Plan{
	"basico": {
		ID:         "basico",
		Name:       "Básico",
		PriceCents: 2999,
		Benefits: []string{
			"15GB de internet",
			"Apps com internet ilimitada",
			"Serviços ilimitados: Ligação, SMS",
		},
		Description: "Ideal para quem não usa muitos dados móveis e não requer para uso profissional.",
		Methods:     []string{"PIX", "Boleto", "Cartão de Crédito"},
	},
	"premium": {
		ID:         "premium",
		Name:       "Premium",
		PriceCents: 5990,
		Benefits: []string{
			"35GB de internet",
			"Apps com internet ilimitada",
			"Serviços ilimitados: Ligação, SMS",
		},
		Description: "Para quem necessita de dados móveis para uso diário intenso ou profissional.",
		Methods:     []string{"PIX", "Boleto", "Cartão de Crédito"},
	},
}

// PlanIDs returns the catalog ids in display order (cheapest first).
func PlanIDs() []string {
	return []string{"basico", "premium"}
}

// GetPlan looks up a plan by id, accepting display names and accents.
func GetPlan(id string) (Plan, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	key = strings.NewReplacer("á", "a", "â", "a", "ã", "a").Replace(key)
	p, ok := Plans[key]
	return p, ok
}
