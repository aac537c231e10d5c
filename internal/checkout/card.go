package checkout

import "github.com/azaliaz/bookhaven/internal/domain/models"

func CardType(number string) string {
	number = stripSpaces(number)
	if number == "" {
		return "CREDIT CARD"
	}
	switch number[0] {
	case '3':
		return "AMEX"
	case '4':
		return "VISA"
	case '5':
		return "MASTERCARD"
	case '6':
		return "DISCOVER"
	}
	return "CREDIT CARD"
}

// MaskCard keeps only what the order history needs to show.
func MaskCard(number string) models.PaymentInfo {
	number = stripSpaces(number)
	last := number
	if len(number) > 4 {
		last = number[len(number)-4:]
	}
	return models.PaymentInfo{CardType: CardType(number), LastFour: last}
}
