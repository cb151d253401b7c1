package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apporder "github.com/obrador/storefront/internal/application/order"
	domactor "github.com/obrador/storefront/internal/domain/actor"
	domcoupon "github.com/obrador/storefront/internal/domain/coupon"
	dominv "github.com/obrador/storefront/internal/domain/inventory"
	dominvoice "github.com/obrador/storefront/internal/domain/invoice"
	domorder "github.com/obrador/storefront/internal/domain/order"
)

// statusFor maps domain sentinels to HTTP status codes. Anything unmapped is
// an internal error and deliberately opaque to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domactor.ErrForbidden):
		return fiber.StatusForbidden

	// Coupon rejections come first: an unknown code is one more way a
	// coupon fails to apply, not a missing resource.
	case domcoupon.IsInvalid(err):
		return fiber.StatusUnprocessableEntity

	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, dominvoice.ErrNotFound),
		errors.Is(err, apporder.ErrProductNotFound):
		return fiber.StatusNotFound

	case errors.Is(err, domorder.ErrPaymentTransition),
		errors.Is(err, domorder.ErrInvalidTransition),
		errors.Is(err, domorder.ErrPaymentStatusConflict),
		errors.Is(err, dominvoice.ErrOrderNotPaid):
		return fiber.StatusConflict

	case errors.Is(err, domorder.ErrEmptyCart),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrInvalidUnitPrice),
		errors.Is(err, domorder.ErrInvalidDeliveryFee),
		errors.Is(err, domorder.ErrInvalidPaymentMethod),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domorder.ErrInvalidPaymentStatus),
		errors.Is(err, dominv.ErrInvalidType),
		errors.Is(err, dominv.ErrZeroQuantity),
		errors.Is(err, dominv.ErrWrongSign),
		errors.Is(err, dominv.ErrMissingActor):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}
