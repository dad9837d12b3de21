// internal/repository/postgres/constraints.go
package postgres

// Constraint names declared in pkg/db/migrations.
const (
	constraintCategorySiblingTitle = "categories_owner_parent_title_key"
	constraintCategoryParent       = "categories_parent_id_fkey"
	constraintWalletCurrency       = "wallets_currency_id_fkey"
	constraintTransactionWallet    = "transactions_wallet_id_fkey"
	constraintTransactionCategory  = "transactions_category_id_fkey"
)
