package domain

import "encoding/json"

// Header agrupa los datos de identificacion de la nota de contrato.
type Header struct {
	ContractNoteNo string `json:"contract_note_no"`
	TradeDate      string `json:"trade_date"`
	SettlementNo   string `json:"settlement_no"`
	SettlementDate string `json:"settlement_date"`
	ClientID       string `json:"client_id"`
	ClientName     string `json:"client_name"`
}

// Transaction representa una linea de operacion (compra/venta) de la nota.
type Transaction struct {
	ISIN                      string   `json:"isin"`
	SecurityName              string   `json:"security_name"`
	OrderNo                   string   `json:"order_no,omitempty"`
	TradeNo                   string   `json:"trade_no,omitempty"`
	BuyQuantity               *float64 `json:"buy_quantity,omitempty"`
	SellQuantity              *float64 `json:"sell_quantity,omitempty"`
	TotalQuantity             *float64 `json:"total_quantity,omitempty"`
	BuyWeightedAveragePrice   *float64 `json:"buy_weighted_average_price,omitempty"`
	SellWeightedAveragePrice  *float64 `json:"sell_weighted_average_price,omitempty"`
	BuyNetPayableReceivable   *float64 `json:"buy_net_payable_receivable,omitempty"`
	SellNetPayableReceivable  *float64 `json:"sell_net_payable_receivable,omitempty"`
	TotalNetPayableReceivable *float64 `json:"total_net_payable_receivable,omitempty"`
}

// TaxableValueOfSupply desglosa la base imponible de la nota.
type TaxableValueOfSupply struct {
	TotalBrokerage             *float64 `json:"total_brokerage"`
	ExchangeTransactionCharges *float64 `json:"exchange_transaction_charges"`
	SEBITurnoverFees           *float64 `json:"sebi_turnover_fees"`
	TotalTaxableValue          *float64 `json:"total_taxable_value"`
}

// GSTDetails desglosa CGST/SGST/IGST sobre brokerage y cargos.
type GSTDetails struct {
	CGSTRate            *float64 `json:"cgst_rate"`
	CGSTBrokerageAmount *float64 `json:"cgst_brokerage_amount"`
	CGSTChargesAmount   *float64 `json:"cgst_charges_amount"`
	CGSTTotalAmount     *float64 `json:"cgst_total_amount"`
	SGSTRate            *float64 `json:"sgst_rate"`
	SGSTBrokerageAmount *float64 `json:"sgst_brokerage_amount"`
	SGSTChargesAmount   *float64 `json:"sgst_charges_amount"`
	SGSTTotalAmount     *float64 `json:"sgst_total_amount"`
	IGSTRate            *float64 `json:"igst_rate"`
	IGSTBrokerageAmount *float64 `json:"igst_brokerage_amount"`
	IGSTChargesAmount   *float64 `json:"igst_charges_amount"`
	IGSTTotalAmount     *float64 `json:"igst_total_amount"`
}

// Obligations agrupa las obligaciones de pago/cobro de la nota.
type Obligations struct {
	PayOutObligation            *float64             `json:"pay_out_obligation"`
	TaxableValueOfSupply        TaxableValueOfSupply `json:"taxable_value_of_supply"`
	GSTDetails                  GSTDetails           `json:"gst_details"`
	SecuritiesTransactionTax    *float64             `json:"securities_transaction_tax"`
	StampDuty                   *float64             `json:"stamp_duty"`
	NetAmountReceivableByClient *float64             `json:"net_amount_receivable_by_client"`
	NetAmountToBeCreditedInBank *float64             `json:"net_amount_to_be_credited_in_bank"`
}

// ContractNote es la vista tipada de una nota de contrato ISEC completa.
type ContractNote struct {
	Header       Header        `json:"header"`
	Transactions []Transaction `json:"transactions"`
	Obligations  Obligations   `json:"obligations"`
}

// DecodeContractNote convierte el valor generico recuperado en la vista tipada.
// La extraccion trabaja siempre sobre el mapa generico; esta conversion es solo
// para consumidores que quieren campos tipados (CLI, resumenes).
func DecodeContractNote(data map[string]any) (ContractNote, error) {
	var note ContractNote
	raw, err := json.Marshal(data)
	if err != nil {
		return ContractNote{}, err
	}
	if err := json.Unmarshal(raw, &note); err != nil {
		return ContractNote{}, err
	}
	return note, nil
}
