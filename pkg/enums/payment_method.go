package enums

// PaymentMethod identifies how the customer intends to pay. WhatsApp orders
// are settled by hand; card and pix go through the hosted checkout.
type PaymentMethod string

const (
	PaymentMethodWhatsApp PaymentMethod = "whatsapp"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodPix      PaymentMethod = "pix"
)

var gatewayMethods = []PaymentMethod{PaymentMethodCard, PaymentMethodPix}

func (p PaymentMethod) IsValid() bool {
	return p == PaymentMethodWhatsApp || p.IsGateway()
}

func (p PaymentMethod) IsGateway() bool {
	_, err := parseKnown("", string(p), gatewayMethods)
	return err == nil
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parseKnown("payment method", value, []PaymentMethod{PaymentMethodWhatsApp, PaymentMethodCard, PaymentMethodPix})
}
