// Package census 保存按类目标定的销量排名普查表和站点需求规模系数。
// 两张表都是启动时构建一次、全程只读共享的静态数据，不是运行期状态。
package census

// Category 普查表的规范类目键
type Category string

const (
	CategoryBeauty          Category = "beauty"
	CategoryElectronics     Category = "electronics"
	CategoryHomeKitchen     Category = "home_kitchen"
	CategoryGrocery         Category = "grocery"
	CategoryToys            Category = "toys"
	CategoryBaby            Category = "baby"
	CategorySports          Category = "sports"
	CategoryFashion         Category = "fashion"
	CategoryTools           Category = "tools"
	CategoryComputing       Category = "computing"
	CategoryPets            Category = "pets"
	CategoryHealth          Category = "health"
	CategoryBooks           Category = "books"
	CategoryGarden          Category = "garden"
	CategoryLighting        Category = "lighting"
	CategoryOffice          Category = "office"
	CategoryMajorAppliances Category = "major_appliances"
	CategoryAutomotive      Category = "automotive"
	// CategoryOther 规范化失败时的兜底类目
	CategoryOther Category = "other"
)

// Cutoffs 类目内各百分位档对应的绝对销量排名截止值
// 按目录快照手工标定：排名不超过 Top1 即处于类目前 1%，依此类推
type Cutoffs struct {
	Top1  int
	Top2  int
	Top3  int
	Top5  int
	Top10 int
}

// BaselineMarketplaceID 基准站点（需求规模系数 1.0）
const BaselineMarketplaceID = "ATVPDKIKX0DER"

// DefaultMarketplaceScale 未知站点使用的保守系数
const DefaultMarketplaceScale = 0.25

// Table 普查表与站点系数表的只读组合
type Table struct {
	rows   map[Category]Cutoffs
	scales map[string]float64
}

// Default 构建默认普查表，数值按最近一次目录快照标定
func Default() *Table {
	return &Table{
		rows: map[Category]Cutoffs{
			CategoryBeauty:          {Top1: 52000, Top2: 104500, Top3: 156800, Top5: 262000, Top10: 524300},
			CategoryElectronics:     {Top1: 199266, Top2: 398530, Top3: 597800, Top5: 996330, Top10: 1992660},
			CategoryHomeKitchen:     {Top1: 185400, Top2: 371000, Top3: 556300, Top5: 927200, Top10: 1854400},
			CategoryGrocery:         {Top1: 41800, Top2: 83700, Top3: 125500, Top5: 209200, Top10: 418400},
			CategoryToys:            {Top1: 68200, Top2: 136500, Top3: 204700, Top5: 341200, Top10: 682500},
			CategoryBaby:            {Top1: 29400, Top2: 58900, Top3: 88300, Top5: 147200, Top10: 294400},
			CategorySports:          {Top1: 112600, Top2: 225300, Top3: 337900, Top5: 563200, Top10: 1126500},
			CategoryFashion:         {Top1: 248900, Top2: 497800, Top3: 746700, Top5: 1244500, Top10: 2489000},
			CategoryTools:           {Top1: 74500, Top2: 149000, Top3: 223600, Top5: 372700, Top10: 745400},
			CategoryComputing:       {Top1: 38700, Top2: 77400, Top3: 116100, Top5: 193500, Top10: 387100},
			CategoryPets:            {Top1: 33100, Top2: 66200, Top3: 99300, Top5: 165600, Top10: 331200},
			CategoryHealth:          {Top1: 61900, Top2: 123800, Top3: 185700, Top5: 309600, Top10: 619300},
			CategoryBooks:           {Top1: 310500, Top2: 621000, Top3: 931600, Top5: 1552700, Top10: 3105400},
			CategoryGarden:          {Top1: 27600, Top2: 55200, Top3: 82800, Top5: 138000, Top10: 276100},
			CategoryLighting:        {Top1: 18400, Top2: 36800, Top3: 55300, Top5: 92100, Top10: 184300},
			CategoryOffice:          {Top1: 45200, Top2: 90500, Top3: 135700, Top5: 226200, Top10: 452400},
			CategoryMajorAppliances: {Top1: 5800, Top2: 11600, Top3: 17400, Top5: 29000, Top10: 58100},
			CategoryAutomotive:      {Top1: 96300, Top2: 192700, Top3: 289000, Top5: 481700, Top10: 963500},
			CategoryOther:           {Top1: 85000, Top2: 170000, Top3: 255000, Top5: 425000, Top10: 850000},
		},
		scales: map[string]float64{
			BaselineMarketplaceID: 1.0,  // amazon.com
			"A2Q3Y263D00KWC":      0.30, // amazon.com.br
			"A1AM78C64UM0Y8":      0.18, // amazon.com.mx
			"A2EUQ1WTGCTBG2":      0.45, // amazon.ca
			"A1F83G8C2ARO7P":      0.62, // amazon.co.uk
			"A1PA6795UKMFR9":      0.70, // amazon.de
			"A13V1IB3VIYZZH":      0.52, // amazon.fr
			"APJ6JRA9NG5V4":       0.44, // amazon.it
			"A1RKKUPIHCS9HS":      0.38, // amazon.es
			"A1VC38T7YXB528":      0.72, // amazon.co.jp
			"A21TJRUUN4KGV":       0.55, // amazon.in
		},
	}
}

// Lookup 查找类目的截止值行，未收录的类目回退到兜底行
func (t *Table) Lookup(c Category) Cutoffs {
	if row, ok := t.rows[c]; ok {
		return row
	}
	return t.rows[CategoryOther]
}

// Has 类目是否有专属的普查行
func (t *Table) Has(c Category) bool {
	_, ok := t.rows[c]
	return ok
}

// MarketplaceScale 查找站点需求规模系数，未知站点返回保守默认值
func (t *Table) MarketplaceScale(marketplaceID string) float64 {
	if scale, ok := t.scales[marketplaceID]; ok && scale > 0 {
		return scale
	}
	return DefaultMarketplaceScale
}
