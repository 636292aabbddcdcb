package cache

import "strconv"

// Collection keys. Per-user keys carry the numeric user id.
const (
	KeyProducts   = "products"
	KeyCategories = "categories"
	KeyAllOrders  = "orders:all"

	PrefixOrders = "orders:"
)

// UserOrdersKey is the key of a user's order history
func UserOrdersKey(userID int64) string {
	return "orders:user:" + strconv.FormatInt(userID, 10)
}

// CartKey is the key of a user's server cart
func CartKey(userID int64) string {
	return "cart:" + strconv.FormatInt(userID, 10)
}

// NotificationsKey is the key of a user's notification list
func NotificationsKey(userID int64) string {
	return "notifications:" + strconv.FormatInt(userID, 10)
}

// CheckoutGuardKey is the in-flight key for a user's checkout
func CheckoutGuardKey(userID int64) string {
	return "checkout:" + strconv.FormatInt(userID, 10)
}
