package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"forkful/internal/kitchen"
	applog "forkful/internal/log"
	"forkful/models"
)

type recipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []tagResponse              `json:"tags"`
	Author           userResponse               `json:"author"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

type recipeRequest struct {
	Ingredients []kitchen.IngredientEntry `json:"ingredients"`
	Tags        []uint                    `json:"tags"`
	Name        string                    `json:"name" validate:"required,max=200"`
	Image       string                    `json:"image"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

// RecipesResource handles /api/recipes: filtered listing, the transactional
// write path, the favorite and cart toggles, and the shopping list export.
func RecipesResource(w http.ResponseWriter, r *http.Request) {
	if database == nil || service == nil {
		writeDetail(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/recipes"), "/")

	switch path {
	case "":
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			createRecipe(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	case "download_shopping_cart":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		downloadShoppingCart(w, r)
		return
	}

	segments := strings.Split(path, "/")
	idValue, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	recipeID := uint(idValue)

	if len(segments) == 2 {
		switch segments[1] {
		case "favorite":
			toggleRecipeRelation(w, r, kitchen.RelationFavorite, recipeID)
		case "shopping_cart":
			toggleRecipeRelation(w, r, kitchen.RelationCart, recipeID)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, recipeID)
	case http.MethodPatch, http.MethodPut:
		updateRecipe(w, r, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer := currentUser(r)
	params := paginationParams(r)
	queryValues := r.URL.Query()

	filtered := database.WithContext(ctx).Model(&models.Recipe{})

	if author := queryValues.Get("author"); author != "" {
		authorID, err := strconv.ParseUint(author, 10, 64)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "author must be a numeric id")
			return
		}
		filtered = filtered.Where("author_id = ?", uint(authorID))
	}

	if slugs := queryValues["tags"]; len(slugs) > 0 {
		filtered = filtered.Where(
			"recipes.id IN (SELECT rt.recipe_id FROM recipe_tags rt JOIN tags ON tags.id = rt.tag_id WHERE tags.slug IN ?)",
			slugs,
		)
	}

	// Membership filters require a viewer; anonymous requests ignore them.
	if truthyParam(queryValues.Get("is_favorited")) && viewer != nil {
		filtered = filtered.Where("recipes.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)", viewer.ID)
	}
	if truthyParam(queryValues.Get("is_in_shopping_cart")) && viewer != nil {
		filtered = filtered.Where("recipes.id IN (SELECT recipe_id FROM cart_items WHERE user_id = ?)", viewer.ID)
	}

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		applog.Error(ctx, "failed to count recipes", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var recipes []models.Recipe
	err := filtered.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("created_at desc, id desc").
		Offset(params.offset()).
		Limit(params.limit).
		Find(&recipes).Error
	if err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	flags := viewerFlags(r, viewer, recipes)
	subscribed := subscribedWriterSet(r, viewer)
	results := make([]recipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		results = append(results, projectRecipe(recipe, flags, subscribed))
	}

	writeJSON(w, http.StatusOK, newPageEnvelope(r, total, params, results))
}

func showRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	recipe, err := service.GetRecipe(r.Context(), recipeID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	viewer := currentUser(r)
	flags := viewerFlags(r, viewer, []models.Recipe{*recipe})
	writeJSON(w, http.StatusOK, projectRecipe(*recipe, flags, subscribedWriterSet(r, viewer)))
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, kitchen.OpCreateRecipe)
	if !ok {
		return
	}

	input, ok := decodeRecipeInput(w, r)
	if !ok {
		return
	}

	recipe, err := service.CreateRecipe(r.Context(), actor.ID, *input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	applog.Info(r.Context(), "recipe created", "recipe", recipe.ID, "author", actor.ID)
	flags := viewerFlags(r, actor, []models.Recipe{*recipe})
	writeJSON(w, http.StatusCreated, projectRecipe(*recipe, flags, subscribedWriterSet(r, actor)))
}

func updateRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	actor := currentUser(r)
	if actor == nil {
		writeDetail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	existing, err := service.GetRecipe(r.Context(), recipeID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !kitchen.Allowed(actor, kitchen.OpModifyRecipe, existing.AuthorID) {
		writeDetail(w, http.StatusForbidden, "you do not have permission to modify this recipe")
		return
	}

	input, ok := decodeRecipeInput(w, r)
	if !ok {
		return
	}

	recipe, err := service.UpdateRecipe(r.Context(), recipeID, *input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	applog.Info(r.Context(), "recipe updated", "recipe", recipe.ID, "actor", actor.ID)
	flags := viewerFlags(r, actor, []models.Recipe{*recipe})
	writeJSON(w, http.StatusOK, projectRecipe(*recipe, flags, subscribedWriterSet(r, actor)))
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	actor := currentUser(r)
	if actor == nil {
		writeDetail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	existing, err := service.GetRecipe(r.Context(), recipeID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !kitchen.Allowed(actor, kitchen.OpModifyRecipe, existing.AuthorID) {
		writeDetail(w, http.StatusForbidden, "you do not have permission to modify this recipe")
		return
	}

	if err := service.DeleteRecipe(r.Context(), recipeID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	applog.Info(r.Context(), "recipe deleted", "recipe", recipeID, "actor", actor.ID)
	w.WriteHeader(http.StatusNoContent)
}

func toggleRecipeRelation(w http.ResponseWriter, r *http.Request, kind kitchen.RelationKind, recipeID uint) {
	actor, ok := requireActor(w, r, kitchen.OpToggleRelation)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		result, err := service.AddRelation(r.Context(), kind, actor.ID, recipeID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		applog.Info(r.Context(), "relation added", "kind", string(kind), "actor", actor.ID, "recipe", recipeID)
		writeJSON(w, http.StatusCreated, result.Recipe)
	case http.MethodDelete:
		if err := service.RemoveRelation(r.Context(), kind, actor.ID, recipeID); err != nil {
			writeDomainError(w, r, err)
			return
		}
		applog.Info(r.Context(), "relation removed", "kind", string(kind), "actor", actor.ID, "recipe", recipeID)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func downloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, kitchen.OpDownloadShoppingList)
	if !ok {
		return
	}

	items, err := service.ShoppingList(r.Context(), actor.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var builder strings.Builder
	builder.WriteString("Shopping list:\n\n")
	for _, item := range items {
		fmt.Fprintf(&builder, "%s: %d %s\n", item.Name, item.TotalAmount, item.MeasurementUnit)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(builder.String())); err != nil {
		applog.Error(r.Context(), "failed to write shopping list", "error", err)
	}
}

func decodeRecipeInput(w http.ResponseWriter, r *http.Request) (*kitchen.RecipeInput, bool) {
	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed request body")
		return nil, false
	}
	if messages := validatePayload(req); messages != nil {
		writeDetail(w, http.StatusBadRequest, messages...)
		return nil, false
	}

	image := req.Image
	if mediaStore != nil {
		stored, err := mediaStore.SaveDataURL(req.Image)
		if err != nil {
			applog.Error(r.Context(), "failed to store recipe image", "error", err)
			writeDetail(w, http.StatusBadRequest, "image payload could not be decoded")
			return nil, false
		}
		image = stored
	}

	return &kitchen.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		Image:       image,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: req.Ingredients,
	}, true
}

type recipeViewerFlags struct {
	favorited map[uint]struct{}
	inCart    map[uint]struct{}
}

// viewerFlags loads the favorite and cart membership of the given recipes for
// one viewer in two queries.
func viewerFlags(r *http.Request, viewer *models.User, recipes []models.Recipe) recipeViewerFlags {
	flags := recipeViewerFlags{
		favorited: make(map[uint]struct{}),
		inCart:    make(map[uint]struct{}),
	}
	if viewer == nil || len(recipes) == 0 {
		return flags
	}

	ids := make([]uint, 0, len(recipes))
	for _, recipe := range recipes {
		ids = append(ids, recipe.ID)
	}

	fill := func(model any, dst map[uint]struct{}) {
		var recipeIDs []uint
		err := database.WithContext(r.Context()).
			Model(model).
			Where("user_id = ? AND recipe_id IN ?", viewer.ID, ids).
			Pluck("recipe_id", &recipeIDs).Error
		if err != nil {
			applog.Error(r.Context(), "failed to load viewer relation set", "error", err)
			return
		}
		for _, id := range recipeIDs {
			dst[id] = struct{}{}
		}
	}
	fill(&models.Favorite{}, flags.favorited)
	fill(&models.CartItem{}, flags.inCart)
	return flags
}

func projectRecipe(recipe models.Recipe, flags recipeViewerFlags, subscribed map[uint]struct{}) recipeResponse {
	tags := make([]tagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, projectTag(tag))
	}

	ingredients := make([]recipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		entry := recipeIngredientResponse{ID: row.IngredientID, Amount: row.Amount}
		if row.Ingredient != nil {
			entry.Name = row.Ingredient.Name
			entry.MeasurementUnit = row.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, entry)
	}

	author := userResponse{ID: recipe.AuthorID}
	if recipe.Author != nil {
		_, isSubscribed := subscribed[recipe.Author.ID]
		author = projectUser(*recipe.Author, isSubscribed)
	}

	_, favorited := flags.favorited[recipe.ID]
	_, inCart := flags.inCart[recipe.ID]

	return recipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

func truthyParam(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true
	}
	return false
}
