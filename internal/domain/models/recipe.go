package models

// RecipeType distinguishes fried products from dehydrated ones.
type RecipeType string

const (
	RecipeChips RecipeType = "CHIPS"
	RecipeDried RecipeType = "DRIED"
)

// Recipe is a named process template that parameterises batch processing.
type Recipe struct {
	ID              string     `bson:"_id" json:"id"`
	Name            string     `bson:"name" json:"name" validate:"required"`
	Type            RecipeType `bson:"type" json:"type" validate:"omitempty,oneof=CHIPS DRIED"`
	BaseWeightKg    float64    `bson:"baseWeightKg" json:"baseWeightKg" validate:"gte=0"`
	CookTimeMinutes float64    `bson:"cookTimeMinutes" json:"cookTimeMinutes" validate:"gte=0"`
	Temperature     float64    `bson:"temperature" json:"temperature"`
	Notes           string     `bson:"notes" json:"notes"`
	Ingredients     string     `bson:"ingredients" json:"ingredients"`
	ImageURL        string     `bson:"imageUrl" json:"imageUrl"`
}
