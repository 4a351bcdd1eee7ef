package errcodes

import (
	"net/http"

	"git.appkode.ru/pub/go/failure"
)

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Сделки
	DealNotFound         failure.ErrorCode = "DealNotFound"
	InvalidDealID        failure.ErrorCode = "InvalidDealID"
	InvalidDealStatus    failure.ErrorCode = "InvalidDealStatus"
	DealNotRejectable    failure.ErrorCode = "DealNotRejectable"    // Только PENDING и APPROVED
	DealAlreadyTracked   failure.ErrorCode = "DealAlreadyTracked"   // Повторный Create с тем же ID
	MissingGradingResult failure.ErrorCode = "MissingGradingResult" // GRADED без оценки или сертификата
	CapitalLimitExceeded failure.ErrorCode = "CapitalLimitExceeded"

	ApprovalRequiresCapital failure.ErrorCode = "ApprovalRequiresCapital" // APPROVED только через шлюз капитала

	// Лоты и каталог
	InvalidListing failure.ErrorCode = "InvalidListing"
	InvalidPrice   failure.ErrorCode = "InvalidPrice"
	InvalidGrade   failure.ErrorCode = "InvalidGrade"
	InvalidCatalog failure.ErrorCode = "InvalidCatalog"

	// Хранилище
	PositionNotFound      failure.ErrorCode = "PositionNotFound"
	PositionAlreadyExists failure.ErrorCode = "PositionAlreadyExists"
)

// HTTPStatus сопоставляет доменный код с HTTP-статусом.
func HTTPStatus(code failure.ErrorCode) int {
	switch code {
	case DealNotFound, PositionNotFound, NotFound:
		return http.StatusNotFound
	case InvalidDealID, InvalidDealStatus, InvalidListing, InvalidPrice,
		InvalidGrade, ValidationError, MissingGradingResult:
		return http.StatusBadRequest
	case DealNotRejectable, DealAlreadyTracked, CapitalLimitExceeded, ApprovalRequiresCapital,
		PositionAlreadyExists:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	case TimeoutExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
