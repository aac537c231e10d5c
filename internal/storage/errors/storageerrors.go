package storerrros

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	ErrCartNotExist  = errors.New("cart does not exist")
	ErrOrderNotFound = errors.New("order not found")

	ErrAlreadyInWishlist = errors.New("book is already in your wishlist")
	ErrNotInWishlist     = errors.New("book is not in your wishlist")
	ErrAlreadySubscribed = errors.New("you are already subscribed")
)
