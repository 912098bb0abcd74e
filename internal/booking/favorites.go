package booking

import (
	"context"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/logging"
)

// FavoritesAPI is the subset of *api.Endpoints used for favorites.
type FavoritesAPI interface {
	ListFavorites(ctx context.Context) ([]api.Favorite, error)
	AddFavorite(ctx context.Context, typ api.FavoriteType, target, user api.ID) (*api.Favorite, error)
	RemoveFavorite(ctx context.Context, id api.ID) error
}

// Favorites manages the user's bookmarked services and vehicles.
type Favorites struct {
	api    FavoritesAPI
	userID func() api.ID
	logger *logging.Logger
}

// NewFavorites returns a Favorites manager. userID supplies the id of the
// logged-in user, which the server requires when adding a favorite.
func NewFavorites(f FavoritesAPI, userID func() api.ID, logger *logging.Logger) *Favorites {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Favorites{api: f, userID: userID, logger: logger.WithComponent("favorites")}
}

// List returns all favorites.
func (f *Favorites) List(ctx context.Context) ([]api.Favorite, error) {
	favs, err := f.api.ListFavorites(ctx)
	if err != nil {
		f.logger.Warn("failed to fetch favorites", "error", err)
		return nil, err
	}
	return favs, nil
}

// Add bookmarks target.
func (f *Favorites) Add(ctx context.Context, typ api.FavoriteType, target api.ID) (*api.Favorite, error) {
	user := f.userID()
	if user == "" {
		return nil, errors.Wrap(errors.ErrNotAuthenticated, "add favorite")
	}
	fav, err := f.api.AddFavorite(ctx, typ, target, user)
	if err != nil {
		f.logger.Warn("failed to add favorite", "type", string(typ), "target", string(target), "error", err)
		return nil, err
	}
	return fav, nil
}

// Remove deletes a favorite by its own id.
func (f *Favorites) Remove(ctx context.Context, id api.ID) error {
	if err := f.api.RemoveFavorite(ctx, id); err != nil {
		f.logger.Warn("failed to remove favorite", "favorite_id", string(id), "error", err)
		return err
	}
	return nil
}

// Find returns the favorite pointing at target, if any.
func (f *Favorites) Find(ctx context.Context, typ api.FavoriteType, target api.ID) (*api.Favorite, error) {
	favs, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range favs {
		if favs[i].Type == typ && favs[i].Target() == target {
			return &favs[i], nil
		}
	}
	return nil, nil
}

// Check reports whether target is a favorite. Any failure is logged and
// reported as not favorited.
func (f *Favorites) Check(ctx context.Context, typ api.FavoriteType, target api.ID) bool {
	fav, err := f.Find(ctx, typ, target)
	if err != nil {
		f.logger.Warn("favorite check failed, assuming not favorited", "type", string(typ), "target", string(target), "error", err)
		return false
	}
	return fav != nil
}

// Toggle removes target from favorites if present, otherwise adds it. It
// returns whether target is a favorite afterwards.
func (f *Favorites) Toggle(ctx context.Context, typ api.FavoriteType, target api.ID) (bool, error) {
	fav, err := f.Find(ctx, typ, target)
	if err != nil {
		return false, err
	}
	if fav != nil {
		if err := f.Remove(ctx, fav.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if _, err := f.Add(ctx, typ, target); err != nil {
		return false, err
	}
	return true, nil
}

// ParseFavoriteType accepts "service" or "vehicle".
func ParseFavoriteType(s string) (api.FavoriteType, error) {
	switch t := api.FavoriteType(s); t {
	case api.FavoriteService, api.FavoriteVehicle:
		return t, nil
	default:
		return "", errors.Wrapf(errors.ErrInvalidInput, "favorite type must be service or vehicle, got %q", s)
	}
}
