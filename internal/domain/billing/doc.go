// Package billing provides domain models for payments and gift vouchers.
//
// A Payment settles exactly one reservation through one of three channels:
// card (Stripe Checkout), PayPay, or manual bank transfer. Gateway-backed
// channels carry an external session reference so asynchronous callbacks can
// find their payment; bank transfers instead carry a deadline and wait for
// the farm owner's confirmation.
//
// A GiftVoucher is a prepaid balance redeemable against reservations. Its
// balance is consumed atomically when a payment applies it, and the voucher
// transitions to USED exactly when the balance reaches zero.
//
// Key Aggregates:
//   - Payment: charge, voucher application, confirmation, refund
//   - GiftVoucher: activation, redemption to an owner, balance consumption
//
// The PaymentGateway interface abstracts the external processors; adapters
// live in infrastructure/payment.
package billing
