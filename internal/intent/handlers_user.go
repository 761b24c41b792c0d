package intent

import (
	"context"
	"fmt"

	"github.com/Rrens/shop-assistant/internal/domain"
)

func (h *Handlers) GetUserProfile(ctx context.Context, args Args) Result {
	user, err := h.users.GetProfile(ctx, args.UserID)
	if err != nil {
		return fail(err, "I couldn't load your profile.")
	}
	name := user.Username
	if name == "" {
		name = user.Email
	}
	return ok(user, fmt.Sprintf("Hello %s!", name))
}

func (h *Handlers) GetUserAddresses(ctx context.Context, args Args) Result {
	addresses, err := h.users.ListAddresses(ctx, args.UserID)
	if err != nil {
		return fail(err, "I couldn't load your addresses.")
	}
	if len(addresses) == 0 {
		return ok(map[string]any{"addresses": []domain.Address{}, "total": 0}, "You have no saved addresses yet.")
	}
	return ok(map[string]any{"addresses": addresses, "total": len(addresses)},
		fmt.Sprintf("You have %d saved addresses.", len(addresses)))
}

func (h *Handlers) AddDeliveryAddress(ctx context.Context, args Args) Result {
	input := domain.AddressInput{
		FullName:  args.String("name"),
		Phone:     args.String("phone"),
		Address:   args.String("address"),
		City:      args.String("province"),
		District:  args.String("district"),
		Ward:      args.String("ward"),
		IsDefault: args.Bool("isDefault"),
	}
	if input.FullName == "" || input.Phone == "" || input.Address == "" {
		return clarify("Please give me the recipient name, phone number and street address.")
	}
	if input.City == "" {
		return clarify("Which province or city is this address in?")
	}
	addresses, err := h.users.AddAddress(ctx, args.UserID, input)
	if err != nil {
		return fail(err, "I couldn't save that address.")
	}
	return ok(map[string]any{"addresses": addresses, "total": len(addresses)}, "Your new delivery address has been saved!")
}
