package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPErrorは呼び出し側に返すエラーの分類（ステータスと短いメッセージだけ）。原因は含めない。
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// エラー分類
var (
	ErrInvalidInput = NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	ErrNotFound     = NewHTTPError(http.StatusNotFound, "not found")
	ErrInternal     = NewHTTPError(http.StatusInternalServerError, "internal error")
)
