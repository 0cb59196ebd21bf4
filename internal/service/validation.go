package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var isinPattern = regexp.MustCompile(`^[A-Z]{2}[0-9A-Z]{10}$`)

var requiredHeaderFields = []string{
	"contract_note_no", "trade_date", "settlement_no",
	"settlement_date", "client_id", "client_name",
}

var transactionNumericFields = []string{
	"buy_quantity", "sell_quantity", "total_quantity",
	"buy_weighted_average_price", "sell_weighted_average_price",
	"buy_net_payable_receivable", "sell_net_payable_receivable",
	"total_net_payable_receivable",
}

var requiredObligationFields = []string{
	"pay_out_obligation", "taxable_value_of_supply",
	"gst_details", "securities_transaction_tax", "stamp_duty",
	"net_amount_receivable_by_client", "net_amount_to_be_credited_in_bank",
}

var taxableValueFields = []string{
	"total_brokerage", "exchange_transaction_charges",
	"sebi_turnover_fees", "total_taxable_value",
}

var gstDetailFields = []string{
	"cgst_rate", "cgst_brokerage_amount", "cgst_charges_amount", "cgst_total_amount",
	"sgst_rate", "sgst_brokerage_amount", "sgst_charges_amount", "sgst_total_amount",
	"igst_rate", "igst_brokerage_amount", "igst_charges_amount", "igst_total_amount",
}

// ValidateContractNote aplica las reglas de negocio sobre el mapa generico
// recuperado y devuelve los errores en texto legible. No corta en el primer
// error: el operador necesita la lista completa. Los campos numericos que
// llegan como string parseable se coercen in place sobre el mapa.
func ValidateContractNote(data map[string]any) []string {
	var errs []string

	if len(data) == 0 {
		return []string{"No data extracted from PDF"}
	}

	if rawHeader, ok := data["header"]; !ok {
		errs = append(errs, "Missing header section")
	} else if header, ok := rawHeader.(map[string]any); !ok {
		errs = append(errs, "Header should be an object")
	} else {
		for _, field := range requiredHeaderFields {
			if isEmptyField(header[field]) {
				errs = append(errs, fmt.Sprintf("Missing required header field: %s", field))
			}
		}
	}

	if rawTxs, ok := data["transactions"]; !ok {
		errs = append(errs, "Missing transactions section")
	} else if txs, ok := rawTxs.([]any); !ok {
		errs = append(errs, "Transactions should be a list")
	} else {
		for i, rawTx := range txs {
			errs = append(errs, validateTransaction(rawTx, i)...)
		}
	}

	if rawObl, ok := data["obligations"]; !ok {
		errs = append(errs, "Missing obligations section")
	} else if obligations, ok := rawObl.(map[string]any); !ok {
		errs = append(errs, "Obligations should be an object")
	} else {
		errs = append(errs, validateObligations(obligations)...)
	}

	return errs
}

func isEmptyField(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(value) == ""
	default:
		return false
	}
}

func validateTransaction(rawTx any, index int) []string {
	prefix := fmt.Sprintf("Transaction %d", index)

	tx, ok := rawTx.(map[string]any)
	if !ok {
		return []string{prefix + ": should be an object"}
	}

	var errs []string

	isin, _ := tx["isin"].(string)
	if isin == "" {
		errs = append(errs, prefix+": Missing ISIN")
	} else if !isinPattern.MatchString(isin) {
		errs = append(errs, fmt.Sprintf("%s: Invalid ISIN format: %s", prefix, isin))
	}

	if name, _ := tx["security_name"].(string); name == "" {
		errs = append(errs, prefix+": Missing security name")
	}

	for _, field := range transactionNumericFields {
		value, ok := tx[field]
		if !ok || value == nil {
			continue
		}
		if _, isNum := value.(float64); isNum {
			continue
		}
		if s, isStr := value.(string); isStr {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				tx[field] = parsed
				continue
			}
		}
		errs = append(errs, fmt.Sprintf("%s: Invalid numeric value for %s: %v", prefix, field, value))
	}

	return errs
}

func validateObligations(obligations map[string]any) []string {
	var errs []string

	for _, field := range requiredObligationFields {
		if _, ok := obligations[field]; !ok {
			errs = append(errs, fmt.Sprintf("Missing obligations field: %s", field))
		}
	}

	if tvs, ok := obligations["taxable_value_of_supply"].(map[string]any); ok {
		for _, field := range taxableValueFields {
			if _, ok := tvs[field]; !ok {
				errs = append(errs, fmt.Sprintf("Missing taxable value field: %s", field))
			}
		}
	}

	if gst, ok := obligations["gst_details"].(map[string]any); ok {
		for _, field := range gstDetailFields {
			if _, ok := gst[field]; !ok {
				errs = append(errs, fmt.Sprintf("Missing GST detail field: %s", field))
			}
		}
	}

	return errs
}
