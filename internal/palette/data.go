package palette

// Categorical color lists, largest size of each family.
var categorical = map[string][]string{
	"Category10": {
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	},
	"Category20": {
		"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
		"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
		"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
		"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
	},
	"Category20b": {
		"#393b79", "#5254a3", "#6b6ecf", "#9c9ede", "#637939",
		"#8ca252", "#b5cf6b", "#cedb9c", "#8c6d31", "#bd9e39",
		"#e7ba52", "#e7cb94", "#843c39", "#ad494a", "#d6616b",
		"#e7969c", "#7b4173", "#a55194", "#ce6dbd", "#de9ed6",
	},
	"Category20c": {
		"#3182bd", "#6baed6", "#9ecae1", "#c6dbef", "#e6550d",
		"#fd8d3c", "#fdae6b", "#fdd0a2", "#31a354", "#74c476",
		"#a1d99b", "#c7e9c0", "#756bb1", "#9e9ac8", "#bcbddc",
		"#dadaeb", "#636363", "#969696", "#bdbdbd", "#d9d9d9",
	},
	"Accent": {
		"#7fc97f", "#beaed4", "#fdc086", "#ffff99",
		"#386cb0", "#f0027f", "#bf5b17", "#666666",
	},
	"GnBu": {
		"#084081", "#0868ac", "#2b8cbe", "#4eb3d3", "#7bccc4",
		"#a8ddb5", "#ccebc5", "#e0f3db", "#f7fcf0",
	},
	"PRGn": {
		"#40004b", "#762a83", "#9970ab", "#c2a5cf", "#e7d4e8", "#f7f7f7",
		"#d9f0d3", "#a6dba0", "#5aae61", "#1b7837", "#00441b",
	},
	"Paired": {
		"#a6cee3", "#1f78b4", "#b2df8a", "#33a02c", "#fb9a99", "#e31a1c",
		"#fdbf6f", "#ff7f00", "#cab2d6", "#6a3d9a", "#ffff99", "#b15928",
	},
}

// Anchor stops for the 256-color continuous maps, low to high.
var continuous = map[string][]string{
	"Greys256": {"#000000", "#ffffff"},
	"Viridis256": {
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
	},
	"Inferno256": {
		"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60",
		"#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4",
	},
	"Magma256": {
		"#000004", "#180f3d", "#440f76", "#721f81", "#9e2f7f",
		"#cd4071", "#f1605d", "#fd9668", "#feca8d", "#fcfdbf",
	},
	"Plasma256": {
		"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
		"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
	},
	"Cividis256": {
		"#00224e", "#123570", "#3b496c", "#575d6d", "#707173",
		"#8a8779", "#a69d75", "#c4b56c", "#e4cf5b", "#fee838",
	},
	"Turbo256": {
		"#30123b", "#4145ab", "#4675ed", "#39a2fc", "#1bcfd4",
		"#24eca6", "#61fc6c", "#a4fc3b", "#d1e835", "#f3c63a",
		"#fe9b2d", "#f36315", "#d93806", "#b11901", "#7a0402",
	},
}
