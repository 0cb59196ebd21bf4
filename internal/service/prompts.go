package service

// Prompt de sistema para la extraccion. Pide JSON puro para minimizar el
// trabajo de limpieza posterior; aun asi los modelos suelen envolver la
// respuesta en fences, de eso se encarga RecoverJSONPayload.
const extractionSystemPrompt = `You are a financial data extraction assistant specialized in ISEC (ICICI Securities) contract notes.
Read the attached contract note PDF and extract the requested fields exactly as they appear in the document.
Respond with a single JSON object and nothing else: no prose, no explanations, no markdown fences.
Use null for any value that is not present in the document. Numeric values must be plain JSON numbers.`

// Esqueleto compacto del JSON esperado, con una transaccion de ejemplo.
const compactOutputSchema = `{"header":{"contract_note_no":"","trade_date":"","settlement_no":"","settlement_date":"","client_id":"","client_name":""},"transactions":[{"isin":"","security_name":"","order_no":"","trade_no":"","buy_quantity":0,"sell_quantity":0,"total_quantity":0,"buy_weighted_average_price":0,"sell_weighted_average_price":0,"buy_net_payable_receivable":0,"sell_net_payable_receivable":0,"total_net_payable_receivable":0}],"obligations":{"pay_out_obligation":0,"taxable_value_of_supply":{"total_brokerage":0,"exchange_transaction_charges":0,"sebi_turnover_fees":0,"total_taxable_value":0},"gst_details":{"cgst_rate":0,"cgst_brokerage_amount":0,"cgst_charges_amount":0,"cgst_total_amount":0,"sgst_rate":0,"sgst_brokerage_amount":0,"sgst_charges_amount":0,"sgst_total_amount":0,"igst_rate":0,"igst_brokerage_amount":0,"igst_charges_amount":0,"igst_total_amount":0},"securities_transaction_tax":0,"stamp_duty":0,"net_amount_receivable_by_client":0,"net_amount_to_be_credited_in_bank":0}}`

const ultraCompactPrompt = "Extract ISEC contract note data. Return JSON with header, transactions, obligations."

// estimateTokens usa la heuristica de ~4 caracteres por token. Alcanza para
// decidir entre el prompt compacto y el ultra-compacto.
func estimateTokens(text string) int {
	return len(text) / 4
}

// buildExtractionPrompts arma el par system/user. Si el prompt combinado se
// pasa del presupuesto de tokens, degrada a la version ultra-compacta sin
// esqueleto de esquema.
func buildExtractionPrompts(maxPromptTokens int) (systemPrompt, userPrompt string) {
	userPrompt = "Extract ISEC contract note data. Return JSON only:\n\n" + compactOutputSchema
	if maxPromptTokens > 0 && estimateTokens(extractionSystemPrompt+userPrompt) > maxPromptTokens {
		userPrompt = ultraCompactPrompt
	}
	return extractionSystemPrompt, userPrompt
}
