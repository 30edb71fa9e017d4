package analyzer

// 本文件集中维护各项启发式检查所依赖的词典。
// 全部按小写存储，匹配前先把输入转小写。

// 强动作动词，常见于高质量的成果描述（过去式）
var strongActionVerbs = map[string]bool{
	"accelerated":  true,
	"achieved":     true,
	"architected":  true,
	"automated":    true,
	"built":        true,
	"created":      true,
	"delivered":    true,
	"designed":     true,
	"developed":    true,
	"directed":     true,
	"drove":        true,
	"engineered":   true,
	"established":  true,
	"executed":     true,
	"expanded":     true,
	"generated":    true,
	"implemented":  true,
	"improved":     true,
	"increased":    true,
	"launched":     true,
	"led":          true,
	"managed":      true,
	"mentored":     true,
	"modernized":   true,
	"optimized":    true,
	"orchestrated": true,
	"overhauled":   true,
	"pioneered":    true,
	"produced":     true,
	"reduced":      true,
	"resolved":     true,
	"revamped":     true,
	"scaled":       true,
	"shipped":      true,
	"spearheaded":  true,
	"streamlined":  true,
	"strengthened": true,
	"supervised":   true,
	"transformed":  true,
	"won":          true,
}

// 弱动词及其替换建议
var weakVerbReplacements = map[string]string{
	"helped":       "facilitated",
	"worked":       "collaborated",
	"did":          "executed",
	"made":         "created",
	"used":         "leveraged",
	"got":          "achieved",
	"handled":      "managed",
	"tried":        "pursued",
	"participated": "contributed",
	"supported":    "enabled",
}

// 量化指标，经历条目命中任意一项即视为已量化
var quantIndicators = []string{
	"%", "percent", "$", "million", "billion", "thousand",
	"increased", "decreased", "reduced", "improved", "saved",
	"generated", "grew", "revenue", "budget", "team of",
	"users", "customers", "clients", "hours",
}

// 收益动词。未量化但含收益动词的条目计为错失的量化机会。
var benefitVerbs = []string{
	"improved", "led", "built", "managed", "developed", "created",
	"launched", "designed", "implemented", "delivered", "optimized",
}

// 清晰度加分指示词
var clarityPositive = []string{
	"specifically", "resulting in", "in order to", "successfully",
	"directly", "consistently", "effectively", "measurably",
}

// 模糊表述，清晰度扣分
var clarityNegative = []string{
	"various", "several", "many", "some", "stuff", "things",
	"responsible for", "duties included", "assisted with", "etc",
}

// 影响力词
var impactWords = []string{
	"transformed", "revolutionized", "pioneered", "spearheaded",
	"championed", "accelerated", "doubled", "tripled", "exceeded",
	"outperformed",
}

// 词面情感词表，AFINN 风格的小型子集，用于影响力打分
var sentimentLexicon = map[string]int{
	"achieved":    2,
	"award":       3,
	"awarded":     3,
	"best":        3,
	"excellent":   3,
	"exceptional": 4,
	"outstanding": 4,
	"success":     2,
	"successful":  3,
	"improved":    2,
	"improvement": 2,
	"growth":      2,
	"innovative":  2,
	"efficient":   2,
	"strong":      2,
	"win":         4,
	"won":         4,
	"top":         2,
	"failed":      -2,
	"failure":     -2,
	"problem":     -1,
	"problems":    -1,
	"issue":       -1,
	"issues":      -1,
	"difficult":   -1,
	"poor":        -2,
	"loss":        -2,
	"decline":     -2,
	"weak":        -2,
	"bad":         -3,
}

// 职业通用关键字，无岗位要求时关键词覆盖率的回退词典
var professionalKeywords = []string{
	"managed", "developed", "experience", "skills", "team",
	"project", "delivered", "professional", "results", "strategy",
	"communication", "leadership",
}

// 可读性检查用的动作动词小词典（14 个）
var readabilityActionVerbs = []string{
	"led", "managed", "developed", "created", "implemented",
	"designed", "improved", "increased", "reduced", "delivered",
	"built", "launched", "achieved", "optimized",
}

// 不专业邮箱的俚语片段
var unprofessionalEmailTokens = []string{
	"cool", "dude", "sexy", "hot", "babe", "gamer", "xxx", "420",
}

// 免费邮箱域名，出现即视为欠专业
var freeMailDomains = []string{
	"aol.com", "hotmail.com", "yahoo.com", "ymail.com",
	"rocketmail.com", "mail.com",
}
