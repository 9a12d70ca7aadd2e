package rulestore

import "core/internal/model"

// Built-in entity dictionaries. A parameter of a known type that declares
// no surface forms of its own inherits the dictionary for that type, so
// rule authors only spell out surface forms when a rule needs unusual ones.
var builtinDictionaries = map[string]model.ParamSpec{
	model.ParamTypeFactory: {
		ExtractFrom: []string{
			"深圳工厂", "深圳", "东莞工厂", "东莞", "惠州工厂", "惠州", "苏州工厂", "苏州",
		},
		Mapping: map[string]string{
			"深圳": "深圳工厂",
			"东莞": "东莞工厂",
			"惠州": "惠州工厂",
			"苏州": "苏州工厂",
		},
	},
	model.ParamTypeSupplier: {
		ExtractFrom: []string{
			"聚龙光电", "聚龙", "华星科技", "华星", "比亚迪电子", "比亚迪", "蓝思科技", "蓝思",
		},
		Mapping: map[string]string{
			"聚龙":  "聚龙光电",
			"华星":  "华星科技",
			"比亚迪": "比亚迪电子",
			"蓝思":  "蓝思科技",
		},
	},
	model.ParamTypeMaterial: {
		ExtractFrom: []string{
			"玻璃盖板", "盖板", "电池", "电芯", "屏幕", "显示屏", "外壳", "中框",
		},
		Mapping: map[string]string{
			"盖板":  "玻璃盖板",
			"电芯":  "电池",
			"显示屏": "屏幕",
			"中框":  "外壳",
		},
	},
	model.ParamTypeStatus: {
		ExtractFrom: []string{"合格", "不合格", "待检", "检验中", "在途", "入库", "冻结"},
	},
	model.ParamTypeResult: {
		ExtractFrom: []string{"通过", "未通过", "合格", "不合格", "复检"},
		Mapping: map[string]string{
			"合格":  "通过",
			"不合格": "未通过",
		},
	},
}

// applyDictionary fills a parameter's surface forms and mapping from the
// built-in dictionary when the rule declares none.
func applyDictionary(spec model.ParamSpec) model.ParamSpec {
	dict, ok := builtinDictionaries[spec.Type]
	if !ok {
		return spec
	}
	if len(spec.ExtractFrom) == 0 {
		spec.ExtractFrom = dict.ExtractFrom
		if len(spec.Mapping) == 0 {
			spec.Mapping = dict.Mapping
		}
	}
	return spec
}
