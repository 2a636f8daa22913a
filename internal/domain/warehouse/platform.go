package warehouse

// Platform keys are fixed at seed time and never change; every dimension and
// fact row carries one of them.
const (
	PlatformKeyLazada = 1
	PlatformKeyShopee = 2
)

// Platform is the static marketplace lookup dimension
type Platform struct {
	PlatformKey int    `gorm:"primaryKey;autoIncrement:false" csv:"platform_key"`
	Name        string `gorm:"type:varchar(50);not null" csv:"name"`
	Region      string `gorm:"type:varchar(50);not null" csv:"region"`
}

// TableName returns the table name for GORM
func (Platform) TableName() string {
	return "dim_platform"
}

// SeedPlatforms returns the two marketplace rows in key order
func SeedPlatforms() []Platform {
	return []Platform{
		{PlatformKey: PlatformKeyLazada, Name: "Lazada", Region: "Southeast Asia"},
		{PlatformKey: PlatformKeyShopee, Name: "Shopee", Region: "Southeast Asia"},
	}
}

// KnownPlatform reports whether key identifies a seeded platform
func KnownPlatform(key int) bool {
	return key == PlatformKeyLazada || key == PlatformKeyShopee
}
