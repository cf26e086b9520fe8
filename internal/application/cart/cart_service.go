package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	domaincart "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartService handles cart business operations
type CartService struct {
	txScope TransactionScope
	guard   *domaincart.StockGuard
	pricing domaincart.PricingPolicy
}

// NewCartService creates a new CartService
func NewCartService(txScope TransactionScope, pricing domaincart.PricingPolicy) *CartService {
	return &CartService{
		txScope: txScope,
		guard:   domaincart.NewStockGuard(),
		pricing: pricing,
	}
}

// Add puts quantity units of a product into the owner's cart. When the
// owner already holds a line for the product the quantities are added,
// and the combined amount is validated against the product's limits.
func (s *CartService) Add(ctx context.Context, owner identity.Identity, productID uuid.UUID, quantity int) (*CartLineResponse, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	var resp *CartLineResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		existing, err := repos.CartRepo().FindActiveByOwnerAndProduct(ctx, owner, productID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		requested := quantity
		if existing != nil {
			requested += existing.Quantity
		}
		clamped, err := s.guard.Clamp(product, requested)
		if err != nil {
			return err
		}

		line := existing
		if line == nil {
			line, err = domaincart.NewCartItem(owner, productID, clamped)
			if err != nil {
				return err
			}
		} else if err := line.SetQuantity(clamped); err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, line); err != nil {
			return err
		}

		r := toLineResponse(line, product)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// BuyNow puts exactly quantity units of a product into the owner's
// cart, replacing any quantity already there.
func (s *CartService) BuyNow(ctx context.Context, owner identity.Identity, productID uuid.UUID, quantity int) (*CartLineResponse, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	var resp *CartLineResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		clamped, err := s.guard.Clamp(product, quantity)
		if err != nil {
			return err
		}

		line, err := repos.CartRepo().FindActiveByOwnerAndProduct(ctx, owner, productID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			line, err = domaincart.NewCartItem(owner, productID, clamped)
			if err != nil {
				return err
			}
		} else if err := line.SetQuantity(clamped); err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, line); err != nil {
			return err
		}

		r := toLineResponse(line, product)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Increase bumps a cart line by one unit
func (s *CartService) Increase(ctx context.Context, owner identity.Identity, itemID uuid.UUID) (*CartLineResponse, error) {
	var resp *CartLineResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		line, product, err := s.ownedLine(ctx, repos, owner, itemID)
		if err != nil {
			return err
		}

		clamped, err := s.guard.Clamp(product, line.Quantity+1)
		if err != nil {
			return err
		}
		if err := line.SetQuantity(clamped); err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, line); err != nil {
			return err
		}

		r := toLineResponse(line, product)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Decrease drops a cart line by one unit. The quantity never falls
// below the product's minimum purchase or below one; at that floor the
// line is left as is. Removal only happens via Remove.
func (s *CartService) Decrease(ctx context.Context, owner identity.Identity, itemID uuid.UUID) (*CartLineResponse, error) {
	var resp *CartLineResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		line, product, err := s.ownedLine(ctx, repos, owner, itemID)
		if err != nil {
			return err
		}

		floor := product.MinPurchase
		if floor < 1 {
			floor = 1
		}
		next := line.Quantity - 1
		if next < floor {
			r := toLineResponse(line, product)
			resp = &r
			return nil
		}
		if err := line.SetQuantity(next); err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, line); err != nil {
			return err
		}

		r := toLineResponse(line, product)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Remove deletes a cart line
func (s *CartService) Remove(ctx context.Context, owner identity.Identity, itemID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		line, err := repos.CartRepo().FindByID(ctx, itemID)
		if err != nil {
			return err
		}
		if line.Owner() != owner {
			return shared.ErrForbidden
		}
		return repos.CartRepo().Delete(ctx, line.ID)
	})
}

// Summary returns the owner's active cart with its money breakdown.
// Lines whose product has left the catalog are skipped.
func (s *CartService) Summary(ctx context.Context, owner identity.Identity) (*CartSummaryResponse, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	var resp *CartSummaryResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, products, err := loadPricedCart(ctx, repos, owner)
		if err != nil {
			return err
		}

		out := CartSummaryResponse{Lines: make([]CartLineResponse, 0, len(lines))}
		priced := make([]domaincart.PricedLine, 0, len(lines))
		for i := range lines {
			product, ok := products[lines[i].ProductID]
			if !ok {
				continue
			}
			out.Lines = append(out.Lines, toLineResponse(&lines[i], product))
			priced = append(priced, domaincart.PricedLine{
				ItemID:      lines[i].ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.DisplayPrice(),
				Quantity:    lines[i].Quantity,
			})
		}

		totals := s.pricing.Quote(priced)
		out.Subtotal = totals.Subtotal
		out.Tax = totals.Tax
		out.Shipping = totals.Shipping
		out.Total = totals.Total
		resp = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// MergeGuestIntoUser folds a guest session's cart into a user's cart,
// typically right after login. Quantities for products held by both are
// combined and capped at the product's purchase and stock limits. The
// guest lines are gone afterwards.
func (s *CartService) MergeGuestIntoUser(ctx context.Context, guest, user identity.Identity) error {
	if !guest.IsGuest() || !user.IsUser() {
		return shared.ErrInvalidInput
	}
	if err := guest.Validate(); err != nil {
		return err
	}
	if err := user.Validate(); err != nil {
		return err
	}

	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		guestLines, err := repos.CartRepo().FindActiveByOwner(ctx, guest)
		if err != nil {
			return err
		}

		for i := range guestLines {
			line := &guestLines[i]
			userLine, err := repos.CartRepo().FindActiveByOwnerAndProduct(ctx, user, line.ProductID)
			if err != nil {
				if !errors.Is(err, shared.ErrNotFound) {
					return err
				}
				if err := line.Reassign(user); err != nil {
					return err
				}
				if err := repos.CartRepo().Save(ctx, line); err != nil {
					return err
				}
				continue
			}

			product, err := repos.ProductRepo().FindByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			combined := capQuantity(product, userLine.Quantity+line.Quantity)
			if err := userLine.SetQuantity(combined); err != nil {
				return err
			}
			if err := repos.CartRepo().Save(ctx, userLine); err != nil {
				return err
			}
			if err := repos.CartRepo().Delete(ctx, line.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CartService) ownedLine(ctx context.Context, repos TransactionalRepositories, owner identity.Identity, itemID uuid.UUID) (*domaincart.CartItem, *catalog.Product, error) {
	line, err := repos.CartRepo().FindByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if line.Owner() != owner {
		return nil, nil, shared.ErrForbidden
	}
	product, err := repos.ProductRepo().FindByID(ctx, line.ProductID)
	if err != nil {
		return nil, nil, err
	}
	return line, product, nil
}

func loadPricedCart(ctx context.Context, repos TransactionalRepositories, owner identity.Identity) ([]domaincart.CartItem, map[uuid.UUID]*catalog.Product, error) {
	lines, err := repos.CartRepo().FindActiveByOwner(ctx, owner)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for i := range lines {
		ids = append(ids, lines[i].ProductID)
	}
	products := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) > 0 {
		found, err := repos.ProductRepo().FindByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		for i := range found {
			products[found[i].ID] = &found[i]
		}
	}
	return lines, products, nil
}

// capQuantity fits a merged quantity into the product's limits instead
// of rejecting the merge outright.
func capQuantity(p *catalog.Product, quantity int) int {
	if p.MaxPurchase > 0 && quantity > p.MaxPurchase {
		quantity = p.MaxPurchase
	}
	if quantity > p.StockQuantity {
		quantity = p.StockQuantity
	}
	if quantity < 1 {
		quantity = 1
	}
	return quantity
}
