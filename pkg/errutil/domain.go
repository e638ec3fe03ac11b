package errutil

const (
	ReasonNotVerified       = "NOT_VERIFIED"
	ReasonAlreadyJoined     = "ALREADY_JOINED"
	ReasonCapacityExceeded  = "CAPACITY_EXCEEDED"
	ReasonInvalidWeight     = "INVALID_WEIGHT"
	ReasonEventNotAttended  = "EVENT_NOT_ATTENDED"
	ReasonInvalidRange      = "INVALID_RANGE"
	ReasonInvalidTransition = "INVALID_TRANSITION"
	ReasonStoreUnavailable  = "STORE_UNAVAILABLE"
	ReasonUnknownMaterial   = "UNKNOWN_MATERIAL"
	ReasonNotFound          = "NOT_FOUND"
)

// Sentinels for errors.Is. Use the constructors below to return them with
// a specific message.
var (
	ErrNotVerified       = BaseError{Code: StatusForbidden, Reason: ReasonNotVerified, Message: "recycler is not verified"}
	ErrAlreadyJoined     = BaseError{Code: StatusConflict, Reason: ReasonAlreadyJoined, Message: "recycler already joined this event"}
	ErrCapacityExceeded  = BaseError{Code: StatusConflict, Reason: ReasonCapacityExceeded, Message: "event weight capacity exceeded"}
	ErrInvalidWeight     = BaseError{Code: StatusBadRequest, Reason: ReasonInvalidWeight, Message: "weight must be greater than zero"}
	ErrEventNotAttended  = BaseError{Code: StatusUnprocessableEntity, Reason: ReasonEventNotAttended, Message: "recycler has not joined this event"}
	ErrInvalidRange      = BaseError{Code: StatusBadRequest, Reason: ReasonInvalidRange, Message: "from date must not be after to date"}
	ErrInvalidTransition = BaseError{Code: StatusConflict, Reason: ReasonInvalidTransition, Message: "participation transition not allowed"}
	ErrStoreUnavailable  = BaseError{Code: StatusServiceUnavailable, Reason: ReasonStoreUnavailable, Message: "store unavailable"}
	ErrUnknownMaterial   = BaseError{Code: StatusBadRequest, Reason: ReasonUnknownMaterial, Message: "unknown material"}
	ErrNotFound          = BaseError{Code: StatusNotFound, Reason: ReasonNotFound, Message: "resource not found"}
)

func derive(base BaseError, msg string, err error) error {
	if msg != "" {
		base.Message = msg
	}
	base.Err = err
	return base
}

func NotVerified(msg string) error { return derive(ErrNotVerified, msg, nil) }

func AlreadyJoined(msg string, err error) error { return derive(ErrAlreadyJoined, msg, err) }

func CapacityExceeded(msg string) error { return derive(ErrCapacityExceeded, msg, nil) }

func InvalidWeight(msg string) error { return derive(ErrInvalidWeight, msg, nil) }

func EventNotAttended(msg string) error { return derive(ErrEventNotAttended, msg, nil) }

func InvalidRange(msg string) error { return derive(ErrInvalidRange, msg, nil) }

func InvalidTransition(msg string) error { return derive(ErrInvalidTransition, msg, nil) }

func StoreUnavailable(err error) error { return derive(ErrStoreUnavailable, "", err) }

func UnknownMaterial(msg string) error { return derive(ErrUnknownMaterial, msg, nil) }
