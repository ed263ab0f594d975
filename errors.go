package moneta

import "errors"

// Lookup failures. Façades wrap them with the query that failed; test with errors.Is.
var (
	// ErrUnknownCurrency indicates no provider knows the requested currency.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrAmbiguousCurrency indicates a query expected to select one currency matched several.
	ErrAmbiguousCurrency = errors.New("ambiguous currency")

	// ErrUnknownRounding indicates no provider offers the requested rounding.
	ErrUnknownRounding = errors.New("unknown rounding")

	// ErrNoAmountFactory indicates no amount factory satisfies the query.
	ErrNoAmountFactory = errors.New("no amount factory")

	// ErrUnknownRate indicates no provider can supply the requested exchange rate.
	ErrUnknownRate = errors.New("unknown exchange rate")

	// ErrInvalidArgument indicates a caller contract violation, such as an
	// inconsistent rate chain or a number exceeding an amount context.
	ErrInvalidArgument = errors.New("invalid argument")
)
