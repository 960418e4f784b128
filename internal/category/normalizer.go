// Package category 把上游自由文本的类目/展示组名称映射到普查表的规范类目。
package category

import (
	"strings"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/census"
)

// Rule 规范化规则：任一 pattern 命中即返回对应类目
type Rule struct {
	Patterns []string
	Category census.Category
}

// rules 有序规则表，自上而下逐条求值，首条命中即生效。
// 规则顺序有约束：大家电必须排在电子产品之前（"eletrodomésticos"
// 同样包含 "eletr"），美妆排在健康之前（"cuidados pessoais" 交叉）。
// pattern 一律小写，覆盖葡语/西语主站名称及常见英文等价词。
var rules = []Rule{
	{[]string{"eletrodom", "electrodom", "appliance", "linha branca"}, census.CategoryMajorAppliances},
	{[]string{"beleza", "beauty", "cosmét", "cosmet", "maquiagem", "perfum"}, census.CategoryBeauty},
	{[]string{"informát", "informat", "computador", "computer", "computing", "notebook", "laptop", "pc "}, census.CategoryComputing},
	{[]string{"eletrôn", "eletron", "electrón", "electron", "electronic"}, census.CategoryElectronics},
	{[]string{"brinquedo", "juguete", "toy", "jogos e brinquedos", "games"}, census.CategoryToys},
	{[]string{"bebê", "bebe", "baby", "infantil"}, census.CategoryBaby},
	{[]string{"cozinha", "kitchen", "casa", "home", "decoração", "decoracao", "móveis", "moveis"}, census.CategoryHomeKitchen},
	{[]string{"alimento", "mercearia", "bebida", "grocery", "food", "gourmet"}, census.CategoryGrocery},
	{[]string{"esporte", "deporte", "sport", "aventura", "fitness", "outdoor"}, census.CategorySports},
	{[]string{"moda", "roupa", "vestuário", "vestuario", "calçado", "calcado", "sapato", "joia", "jóia", "acessório", "acessorio", "fashion", "apparel", "clothing", "shoe", "footwear", "jewelry", "jewellery", "accessor"}, census.CategoryFashion},
	{[]string{"ferramenta", "construção", "construcao", "bricolagem", "tool", "diy", "hardware"}, census.CategoryTools},
	{[]string{"pet shop", "pet", "mascota", "animais"}, census.CategoryPets},
	{[]string{"saúde", "saude", "salud", "health", "cuidados pessoais", "personal care", "suplemento"}, census.CategoryHealth},
	{[]string{"livro", "libro", "book"}, census.CategoryBooks},
	{[]string{"jardim", "jardinagem", "jardín", "garden", "lawn"}, census.CategoryGarden},
	{[]string{"ilumina", "luminária", "luminaria", "lighting", "light"}, census.CategoryLighting},
	{[]string{"escritório", "escritorio", "papelaria", "oficina", "office", "stationery"}, census.CategoryOffice},
	{[]string{"automotivo", "automotriz", "autopeças", "autopecas", "automotive", "moto", "vehicle"}, census.CategoryAutomotive},
}

// Normalize 规范化自由文本类目名称
// 纯函数，对任意输入（含空串和乱码）都不会失败，未命中时返回兜底类目
func Normalize(raw string) census.Category {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return census.CategoryOther
	}

	for _, rule := range rules {
		for _, pattern := range rule.Patterns {
			if strings.Contains(needle, pattern) {
				return rule.Category
			}
		}
	}

	return census.CategoryOther
}
