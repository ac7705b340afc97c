// Package testfixture holds small taxonomy files shared by package tests.
package testfixture

// Ingredients is a trimmed ingredient taxonomy in the block grammar.
const Ingredients = `# Ingredient taxonomy fixture
stopwords:en: contains, may contain, and, with

# ingredient/meat
en: Meat, meats

# ingredient/beef
en: Beef, beef meat
parents: en:meat

# ingredient/chicken
en: Chicken
fr: poulet
parents: meat

# ingredient/fish
en: Fish

# ingredient/salmon
#< en:fish
en: Salmon, atlantic salmon

# ingredient/dairy
en: Dairy, dairy products

# ingredient/milk
en: Milk, whole milk
< en:cow milk
parents: en:dairy

# ingredient/cheese
en: Cheese
parents: en:dairy

# ingredient/butter
en: Butter
parents: en:dairy

# ingredient/whey
en: Whey
parents: en:milk

# ingredient/egg
en: Egg, eggs, whole egg

# ingredient/honey
en: Honey

# ingredient/cereal
en: Cereal, cereals

# ingredient/wheat
en: Wheat
parents: en:cereal

# ingredient/flour
en: Flour

# ingredient/wheat-flour
en: Wheat flour, refined wheat flour, maida
parents: en:wheat, en:flour

# ingredient/oats
en: Oats, oat
parents: en:cereal

# ingredient/rice
en: Rice
parents: en:cereal

# ingredient/sugar
en: Sugar, sucrose

# ingredient/cane-sugar
en: Cane sugar
parents: en:sugar

# ingredient/salt
en: Salt, iodised salt

# ingredient/fruit
en: Fruit, fruits

# ingredient/apple
en: Apple, apples
parents: en:fruit

# ingredient/banana
en: Banana, bananas
parents: en:fruit

# ingredient/berries
en: Berries, berry
parents: en:fruit

# ingredient/vegetable
en: Vegetable, vegetables

# ingredient/root-vegetables
en: Root vegetables
parents: en:vegetable

# ingredient/potato
en: Potato, potatoes
parents: en:root-vegetables

# ingredient/onion
en: Onion, onions
parents: en:vegetable

# ingredient/garlic
en: Garlic
parents: en:vegetable

# ingredient/tomato
en: Tomato, tomatoes
parents: en:vegetable

# ingredient/vegetable-oil
en: Vegetable oil

# ingredient/palm-oil
en: Palm oil, palmolein
parents: en:vegetable-oil, en:missing-parent

# ingredient/peanut
en: Peanut, peanuts, groundnut

# ingredient/water
en: Water
`

// Additives is a trimmed additive taxonomy keyed by E-number.
const Additives = `# Additive taxonomy fixture

# ingredient/e500
en: E500, sodium carbonates

# ingredient/e500ii
en: E500(ii), sodium bicarbonate, sodium hydrogen carbonate, baking soda
parents: en:e500

# ingredient/e503
en: E503, ammonium carbonates

# ingredient/e621
en: E621, monosodium glutamate, MSG

# ingredient/e322
en: E322, lecithins, lecithin

# ingredient/e330
en: E330, citric acid

# ingredient/e211
en: E211, sodium benzoate

# ingredient/e471
en: E471, mono- and diglycerides of fatty acids, mono-and-diglycerides
`
