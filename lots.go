package carteira

import "github.com/etnz/carteira/date"

// lot represents a single purchase of a ticker still held.
//
// Under the average cost method lots carry no cost: they only tell when the
// shares being sold were bought.
type lot struct {
	Date     date.Date
	Quantity Quantity
}

// lots are kept in purchase order.
type lots []lot

// sellOldest removes quantityToSell from the oldest lots (FIFO). It returns
// the date of the first lot consumed and the remaining lots.
func (l lots) sellOldest(quantityToSell Quantity) (date.Date, lots) {
	var opened date.Date
	var remainingLots lots

	for _, currentLot := range l {
		if quantityToSell.IsZero() {
			remainingLots = append(remainingLots, currentLot)
			continue
		}
		if opened.IsZero() {
			opened = currentLot.Date
		}
		if currentLot.Quantity.GreaterThan(quantityToSell) {
			// Partial sale from this lot
			remainingLots = append(remainingLots, lot{Date: currentLot.Date, Quantity: currentLot.Quantity.Sub(quantityToSell)})
			quantityToSell = Quantity{}
		} else {
			// Full sale of this lot
			quantityToSell = quantityToSell.Sub(currentLot.Quantity)
		}
	}
	return opened, remainingLots
}

// sellNewest removes quantityToSell from the most recent lots. Day trades
// consume the lots bought the same day, which are the last ones.
func (l lots) sellNewest(quantityToSell Quantity) (date.Date, lots) {
	var opened date.Date
	remainingLots := append(lots(nil), l...)

	for len(remainingLots) > 0 && quantityToSell.IsPositive() {
		i := len(remainingLots) - 1
		currentLot := remainingLots[i]
		opened = currentLot.Date
		if currentLot.Quantity.GreaterThan(quantityToSell) {
			remainingLots[i].Quantity = currentLot.Quantity.Sub(quantityToSell)
			quantityToSell = Quantity{}
		} else {
			remainingLots = remainingLots[:i]
			quantityToSell = quantityToSell.Sub(currentLot.Quantity)
		}
	}
	return opened, remainingLots
}
