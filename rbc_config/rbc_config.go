package rbc_config

const GinPort = "19124"

// 谓词比较符
const (
	Equal    = "=="
	NotEqual = "!="
	Less     = "<"
	LessE    = "<="
	Greater  = ">"
	GreaterE = ">="
)

// 属性类型
const (
	DiscreteType   = "discrete"
	ContinuousType = "continuous"
)

// 连续属性的语义子类型, 只影响取值的展示形式
const (
	IntSubType      = "int"
	FloatSubType    = "float"
	DateSubType     = "date"
	DatetimeSubType = "datetime"
)

const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02 15:04:05"
)

// UnseenValue 预测时遇到训练时没见过的离散值, 扩展进域里的哨兵取值
const UnseenValue = "__unseen__"

// DummyValue schema对齐时允许补充的占位取值
const DummyValue = "__dummy__"

// NegativePrefix 类别名带此前缀的子结点不再递归训练/预测
const NegativePrefix = "NO_"

// 训练默认参数
const (
	DefaultCutOff   = 0.05 //类别占比低于该值时放弃该结点的训练
	DefaultNumFolds = 3    //grow/prune划分的折数
	DefaultMinNo    = 2.0  //规则覆盖的最小加权实例数
	ExpFPOverErr    = 0.5  //MDL中期望的FP占错误的比例
)

// 每条规则的单个属性上最多尝试的划分点数
const MaxSplitPoints = 100

// NilValue 空值在数据行里的表示, 任何测试都不命中
// 实际用math.NaN(), 这里只放展示用的字符串
const NilValueStr = "?"
