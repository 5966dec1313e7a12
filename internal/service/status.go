package service

import (
	"fmt"

	"github.com/tablesidear/api/internal/database"
)

// dineInNext is the table-ordering chain. Each status has exactly one
// successor and COMPLETED has none.
var dineInNext = map[database.OrderStatus]database.OrderStatus{
	database.OrderStatusPENDING:   database.OrderStatusACCEPTED,
	database.OrderStatusACCEPTED:  database.OrderStatusPREPARING,
	database.OrderStatusPREPARING: database.OrderStatusREADY,
	database.OrderStatusREADY:     database.OrderStatusCOMPLETED,
}

// deliveryTransitions covers DELIVERY orders.
// Key is current status, value is the set of statuses it can transition to.
var deliveryTransitions = map[database.OrderStatus][]database.OrderStatus{
	database.OrderStatusPENDING:    {database.OrderStatusCONFIRMED, database.OrderStatusCANCELLED},
	database.OrderStatusCONFIRMED:  {database.OrderStatusPREPARING, database.OrderStatusCANCELLED},
	database.OrderStatusPREPARING:  {database.OrderStatusREADY, database.OrderStatusCANCELLED},
	database.OrderStatusREADY:      {database.OrderStatusINDELIVERY, database.OrderStatusNOSHOW},
	database.OrderStatusINDELIVERY: {database.OrderStatusCOMPLETED},
}

// takeawayTransitions is the delivery graph with pickup at the counter in
// place of IN_DELIVERY.
var takeawayTransitions = map[database.OrderStatus][]database.OrderStatus{
	database.OrderStatusPENDING:   {database.OrderStatusCONFIRMED, database.OrderStatusCANCELLED},
	database.OrderStatusCONFIRMED: {database.OrderStatusPREPARING, database.OrderStatusCANCELLED},
	database.OrderStatusPREPARING: {database.OrderStatusREADY, database.OrderStatusCANCELLED},
	database.OrderStatusREADY:     {database.OrderStatusCOMPLETED, database.OrderStatusNOSHOW},
}

// NextDineInStatus returns the single legal successor of current in the
// table-ordering chain. ok is false for COMPLETED and for any status outside
// the chain.
func NextDineInStatus(current database.OrderStatus) (database.OrderStatus, bool) {
	next, ok := dineInNext[current]
	return next, ok
}

// ValidateTransition checks that an order of the given type may move from
// current to next in one step.
func ValidateTransition(orderType database.OrderType, current, next database.OrderStatus) error {
	switch orderType {
	case database.OrderTypeDINEIN:
		want, ok := dineInNext[current]
		if !ok || want != next {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, next)
		}
		return nil
	case database.OrderTypeDELIVERY:
		return checkTransition(deliveryTransitions, current, next)
	case database.OrderTypeTAKEAWAY:
		return checkTransition(takeawayTransitions, current, next)
	}
	return fmt.Errorf("%w: unknown order type %s", ErrInvalidTransition, orderType)
}

func checkTransition(graph map[database.OrderStatus][]database.OrderStatus, current, next database.OrderStatus) error {
	allowed, ok := graph[current]
	if !ok {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, next)
}
