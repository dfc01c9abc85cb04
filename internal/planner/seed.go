package planner

// DefaultMaterials is the starter catalog inserted by Catalog.Seed.
func DefaultMaterials() []NewMaterial {
	return []NewMaterial{
		{Name: "Chicken Breast", Category: "poultry", NutritionalInfo: []string{"protein", "low fat"}, Available: true},
		{Name: "Eggs", Category: "poultry", NutritionalInfo: []string{"protein", "vitamin B12"}, Available: true},
		{Name: "Beef Steak", Category: "meat", NutritionalInfo: []string{"protein", "iron"}},
		{Name: "Pork Loin", Category: "meat", NutritionalInfo: []string{"protein", "thiamine"}},
		{Name: "Salmon", Category: "seafood", NutritionalInfo: []string{"protein", "omega-3"}, Available: true},
		{Name: "Shrimp", Category: "seafood", NutritionalInfo: []string{"protein", "selenium"}},
		{Name: "Broccoli", Category: "vegetables", NutritionalInfo: []string{"fiber", "vitamin C"}, Available: true},
		{Name: "Spinach", Category: "vegetables", NutritionalInfo: []string{"iron", "vitamin K"}, Available: true},
		{Name: "Tomato", Category: "vegetables", NutritionalInfo: []string{"vitamin C", "lycopene"}, Available: true},
		{Name: "Carrot", Category: "vegetables", NutritionalInfo: []string{"vitamin A", "fiber"}},
		{Name: "Rice", Category: "grains", NutritionalInfo: []string{"carbohydrates"}, Available: true},
		{Name: "Oats", Category: "grains", NutritionalInfo: []string{"fiber", "carbohydrates"}, Available: true},
		{Name: "Whole Wheat Bread", Category: "grains", NutritionalInfo: []string{"fiber", "carbohydrates"}},
		{Name: "Quinoa", Category: "grains", NutritionalInfo: []string{"protein", "fiber"}},
		{Name: "Milk", Category: "dairy", NutritionalInfo: []string{"calcium", "vitamin D"}, Available: true},
		{Name: "Greek Yogurt", Category: "dairy", NutritionalInfo: []string{"protein", "probiotics"}, Available: true},
		{Name: "Cheddar Cheese", Category: "dairy", NutritionalInfo: []string{"calcium", "fat"}},
		{Name: "Garlic", Category: "spices", NutritionalInfo: []string{"allicin"}, Available: true},
		{Name: "Black Pepper", Category: "spices", NutritionalInfo: []string{"piperine"}, Available: true},
		{Name: "Cinnamon", Category: "spices", NutritionalInfo: []string{"antioxidants"}},
	}
}
